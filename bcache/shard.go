package bcache

import "sync"

// shard is one bucket of the hash index over the pool. members holds the
// pool indices of buffers currently mapped to a block hashing here and
// carrying live references; indices rather than pointers keep the
// membership structure free of aliasing into the pool.
//
// A buffer leaves its shard the instant its refcount reaches zero (see
// cache.unref). That invariant is what makes the victim scan in admit
// sound: a zero-ref slot is unreachable from every fast path, so its
// refcount cannot change behind the pool lock.
type shard struct {
	mu      sync.Mutex
	members []int
}

// lookup returns the member buffer bound to (dev, blockno), or nil.
// Caller holds s.mu.
func (s *shard) lookup(slots []*Buf, dev uint32, blockno uint64) *Buf {
	for _, i := range s.members {
		if b := slots[i]; b.dev == dev && b.blockno == blockno {
			return b
		}
	}
	return nil
}

// insert adds pool index i to the membership. Caller holds s.mu.
func (s *shard) insert(i int) {
	s.members = append(s.members, i)
}

// remove drops pool index i from the membership if present, in O(n) with
// a swap-delete. Caller holds s.mu.
func (s *shard) remove(i int) {
	for j, m := range s.members {
		if m == i {
			last := len(s.members) - 1
			s.members[j] = s.members[last]
			s.members = s.members[:last]
			return
		}
	}
}
