package device

import (
	"fmt"
	"os"
	"sync"
)

// File serves block I/O from disk-image files, one image per attached
// device id. Block n lives at byte offset n*blockSize within its image.
// Reads and writes go through ReadAt/WriteAt, so concurrent I/O on
// distinct blocks needs no extra locking; the mutex only guards the
// attachment table.
type File struct {
	blockSize int

	mu     sync.RWMutex
	images map[uint32]*os.File
}

// NewFile creates a file-backed device with the given block size.
// Attach images before issuing I/O.
func NewFile(blockSize int) *File {
	return &File{
		blockSize: blockSize,
		images:    make(map[uint32]*os.File),
	}
}

// Attach opens (creating if necessary) the image at path and serves the
// given device id from it. Attaching an id twice replaces the previous
// image without closing it; detach with Close first if that matters.
func (f *File) Attach(dev uint32, path string) error {
	img, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("device: attach dev %d: %w", dev, err)
	}
	f.mu.Lock()
	f.images[dev] = img
	f.mu.Unlock()
	return nil
}

// Close closes every attached image. The device must be idle.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first error
	for dev, img := range f.images {
		if err := img.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.images, dev)
	}
	return first
}

func (f *File) image(dev uint32) (*os.File, error) {
	f.mu.RLock()
	img, ok := f.images[dev]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: dev %d", ErrUnknownDevice, dev)
	}
	return img, nil
}

// ReadBlock reads the block at blockno into p. Reading past the end of
// the image fails; images are sized by the writes made to them.
func (f *File) ReadBlock(dev uint32, blockno uint64, p []byte) error {
	if len(p) != f.blockSize {
		return fmt.Errorf("device: read buffer is %d bytes, block size is %d", len(p), f.blockSize)
	}
	img, err := f.image(dev)
	if err != nil {
		return err
	}
	if _, err := img.ReadAt(p, int64(blockno)*int64(f.blockSize)); err != nil {
		return fmt.Errorf("device: read dev %d block %d: %w", dev, blockno, err)
	}
	return nil
}

// WriteBlock writes p as the block at blockno, growing the image if the
// block lies past its current end.
func (f *File) WriteBlock(dev uint32, blockno uint64, p []byte) error {
	if len(p) != f.blockSize {
		return fmt.Errorf("device: write buffer is %d bytes, block size is %d", len(p), f.blockSize)
	}
	img, err := f.image(dev)
	if err != nil {
		return err
	}
	if _, err := img.WriteAt(p, int64(blockno)*int64(f.blockSize)); err != nil {
		return fmt.Errorf("device: write dev %d block %d: %w", dev, blockno, err)
	}
	return nil
}

var _ BlockDevice = (*File)(nil)
