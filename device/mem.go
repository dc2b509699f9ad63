package device

import (
	"fmt"
	"sync"
)

type blockID struct {
	dev     uint32
	blockno uint64
}

// Mem is an in-memory block device. Writes persist for the lifetime of
// the value, so it doubles as a ramdisk in tests and examples. Blocks
// never written read back as zeroes, like a fresh disk.
type Mem struct {
	mu        sync.Mutex
	blockSize int
	blocks    map[blockID][]byte
}

// NewMem creates a ramdisk serving blocks of blockSize bytes for any
// (device, block number) pair.
func NewMem(blockSize int) *Mem {
	return &Mem{
		blockSize: blockSize,
		blocks:    make(map[blockID][]byte),
	}
}

// ReadBlock copies the stored contents of the block into p.
func (m *Mem) ReadBlock(dev uint32, blockno uint64, p []byte) error {
	if len(p) != m.blockSize {
		return fmt.Errorf("device: read buffer is %d bytes, block size is %d", len(p), m.blockSize)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if blk, ok := m.blocks[blockID{dev, blockno}]; ok {
		copy(p, blk)
		return nil
	}
	for i := range p {
		p[i] = 0
	}
	return nil
}

// WriteBlock stores a copy of p as the block's contents.
func (m *Mem) WriteBlock(dev uint32, blockno uint64, p []byte) error {
	if len(p) != m.blockSize {
		return fmt.Errorf("device: write buffer is %d bytes, block size is %d", len(p), m.blockSize)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := blockID{dev, blockno}
	blk, ok := m.blocks[id]
	if !ok {
		blk = make([]byte, m.blockSize)
		m.blocks[id] = blk
	}
	copy(blk, p)
	return nil
}

// Preload seeds a block's contents, padding or truncating data to the
// block size. Handy for building test fixtures.
func (m *Mem) Preload(dev uint32, blockno uint64, data []byte) {
	blk := make([]byte, m.blockSize)
	copy(blk, data)
	m.mu.Lock()
	m.blocks[blockID{dev, blockno}] = blk
	m.mu.Unlock()
}

var _ BlockDevice = (*Mem)(nil)
