// Package lru implements exact least-recently-used victim selection.
package lru

import "github.com/IvanBrykalov/bufcache/policy"

// lru picks the unreferenced slot with the oldest use tick.
// It keeps no state, so one instance could serve any pool; the factory
// shape is kept for symmetry with stateful pickers.
type lru struct{}

type lruPolicy struct{}

// New returns a Policy factory that constructs LRU pickers.
func New() policy.Policy { return lruPolicy{} }

func (lruPolicy) New(int) policy.Picker { return &lru{} }

// Victim scans the whole pool for the unreferenced slot least recently
// used. Linear in pool size, which is acceptable at the pool sizes a
// buffer cache runs at; swap in the clock picker when the scan shows up
// in profiles.
func (*lru) Victim(p policy.Pool) int {
	victim := -1
	var oldest uint64
	for i := 0; i < p.Len(); i++ {
		if p.InUse(i) {
			continue
		}
		if t := p.LastUse(i); victim < 0 || t < oldest {
			victim, oldest = i, t
		}
	}
	return victim
}
