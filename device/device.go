// Package device defines the storage backend the buffer cache reads and
// writes through, plus two ready-made implementations: an in-memory
// ramdisk (Mem) and a disk-image file backend (File).
package device

import "errors"

// BlockDevice performs synchronous block I/O on behalf of the cache.
// Calls block until the transfer completes or fails; retry and recovery
// are the implementation's responsibility, the cache only propagates
// errors as-is. The payload slice is exactly one block long.
//
// Implementations must be safe for concurrent use: the cache issues I/O
// while holding only the per-buffer lock, so calls for distinct blocks
// overlap freely.
type BlockDevice interface {
	ReadBlock(dev uint32, blockno uint64, p []byte) error
	WriteBlock(dev uint32, blockno uint64, p []byte) error
}

// ErrUnknownDevice is returned for I/O against a device id that has no
// backing image attached.
var ErrUnknownDevice = errors.New("device: unknown device")
