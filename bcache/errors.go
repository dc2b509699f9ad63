package bcache

import "errors"

// ErrNoBuffers is returned by Acquire when every slot in the pool has
// live references and nothing can be evicted. It means the pool is
// undersized for the number of concurrently held blocks; the cache never
// retries internally.
var ErrNoBuffers = errors.New("bcache: out of buffer slots")

// ErrNoDevice is returned by EnsureValid and Write when no BlockDevice
// was configured in Options.
var ErrNoDevice = errors.New("bcache: no device configured")

// ErrClosed is returned by Acquire and Read after Close.
var ErrClosed = errors.New("bcache: cache is closed")
