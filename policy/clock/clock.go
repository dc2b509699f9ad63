// Package clock implements second-chance (CLOCK) victim selection,
// an approximate LRU that avoids the full-pool scan of the exact policy.
// Useful for large pools where the linear victim scan under the coarse
// pool lock becomes a bottleneck.
package clock

import "github.com/IvanBrykalov/bufcache/policy"

// clock sweeps a hand over the pool. Instead of a separate reference bit
// it remembers the use tick observed at the previous visit: a slot whose
// tick has advanced was touched since the last revolution and gets a
// second chance; an unchanged tick means the slot is cold and is taken.
type clock struct {
	hand int
	seen []uint64
}

type clockPolicy struct{}

// New returns a Policy factory that constructs per-pool clock pickers.
func New() policy.Policy { return clockPolicy{} }

func (clockPolicy) New(slots int) policy.Picker {
	return &clock{seen: make([]uint64, slots)}
}

// Victim advances the hand until it finds an unreferenced slot that has
// not been used since its previous visit. At most two revolutions are
// needed: the first refreshes the seen ticks, the second must land on a
// cold slot (ticks cannot advance on unreferenced slots while the pool
// lock is held). Returns -1 when every slot is in use.
func (c *clock) Victim(p policy.Pool) int {
	n := p.Len()
	if n == 0 {
		return -1
	}
	for step := 0; step < 2*n; step++ {
		i := c.hand
		c.hand = (c.hand + 1) % n
		if p.InUse(i) {
			continue
		}
		if t := p.LastUse(i); t != c.seen[i] {
			// Touched since the last revolution: second chance.
			c.seen[i] = t
			continue
		}
		return i
	}
	return -1
}
