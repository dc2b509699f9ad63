package clock

import "testing"

type fakePool struct {
	inUse []bool
	last  []uint64
}

func (p *fakePool) Len() int             { return len(p.inUse) }
func (p *fakePool) InUse(i int) bool     { return p.inUse[i] }
func (p *fakePool) LastUse(i int) uint64 { return p.last[i] }

func TestVictim_ColdSlotTakenImmediately(t *testing.T) {
	t.Parallel()

	pk := New().New(3)
	p := &fakePool{
		inUse: []bool{false, false, false},
		last:  []uint64{0, 0, 0},
	}
	// Nothing has been touched since construction: the hand takes slot 0.
	if got := pk.Victim(p); got != 0 {
		t.Fatalf("Victim = %d, want 0", got)
	}
}

func TestVictim_TouchedSlotGetsSecondChance(t *testing.T) {
	t.Parallel()

	pk := New().New(3)
	p := &fakePool{
		inUse: []bool{false, false, false},
		last:  []uint64{4, 0, 0}, // slot 0 was touched since the picker last saw it
	}
	if got := pk.Victim(p); got != 1 {
		t.Fatalf("Victim = %d, want 1 (slot 0 skipped once)", got)
	}

	// Next sweep: slot 0's tick is unchanged, so its second chance is spent.
	p.inUse[1] = true // pretend slot 1 got readmitted
	p.inUse[2] = true
	if got := pk.Victim(p); got != 0 {
		t.Fatalf("Victim = %d, want 0 on the second revolution", got)
	}
}

func TestVictim_AllTouchedNeedsTwoRevolutions(t *testing.T) {
	t.Parallel()

	pk := New().New(3)
	p := &fakePool{
		inUse: []bool{false, false, false},
		last:  []uint64{5, 6, 7},
	}
	// First revolution refreshes every seen tick; the second must land on
	// the slot after the hand's start.
	if got := pk.Victim(p); got != 0 {
		t.Fatalf("Victim = %d, want 0", got)
	}
}

func TestVictim_AllInUse(t *testing.T) {
	t.Parallel()

	pk := New().New(2)
	p := &fakePool{
		inUse: []bool{true, true},
		last:  []uint64{1, 2},
	}
	if got := pk.Victim(p); got != -1 {
		t.Fatalf("Victim = %d, want -1", got)
	}
}

func TestVictim_HandAdvancesAcrossCalls(t *testing.T) {
	t.Parallel()

	pk := New().New(3)
	p := &fakePool{
		inUse: []bool{false, false, false},
		last:  []uint64{0, 0, 0},
	}
	if got := pk.Victim(p); got != 0 {
		t.Fatalf("first Victim = %d, want 0", got)
	}
	p.inUse[0] = true
	if got := pk.Victim(p); got != 1 {
		t.Fatalf("second Victim = %d, want 1 (hand moved on)", got)
	}
	p.inUse[1] = true
	if got := pk.Victim(p); got != 2 {
		t.Fatalf("third Victim = %d, want 2", got)
	}
}
