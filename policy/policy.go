package policy

// Pool is a read-only view of the buffer pool that pickers inspect when
// choosing an eviction victim. Slot indices are stable for the life of
// the pool.
//
// Concurrency: all methods are called with the pool lock held. A slot
// reported not-in-use cannot gain references while the pool lock is held,
// because the only zero-to-one refcount transition is admission, which
// itself requires the pool lock.
type Pool interface {
	// Len returns the number of slots in the pool.
	Len() int
	// InUse reports whether slot i has live references (including pins).
	// In-use slots are never evictable.
	InUse(i int) bool
	// LastUse returns slot i's use tick: a monotonically increasing
	// marker refreshed on every lookup hit and admission.
	LastUse(i int) uint64
}

// Picker selects eviction victims for one pool. Victim returns the index
// of an evictable slot, or -1 when every slot is in use (the pool is
// undersized for the workload). Called under the pool lock; a Picker may
// keep per-pool state (e.g. a clock hand) without its own locking.
type Picker interface {
	Victim(p Pool) int
}

// Policy is a factory that creates a Picker sized for a pool of
// `slots` buffer slots.
type Policy interface {
	New(slots int) Picker
}
