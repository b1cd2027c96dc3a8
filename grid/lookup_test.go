package grid

import (
	"testing"

	"github.com/feltech/felt"
)

// checkSingleLookupInvariant verifies the lookup-consistency invariant
// against a SingleLookup: every tracked cell's stored index matches its
// position in the corresponding list, and list lengths match the
// tracked-cell count.
func checkSingleLookupInvariant(t *testing.T, g *SingleLookup, size, offset felt.VecDi) {
	t.Helper()
	total := 0
	count := size.Product()
	for i := 0; i < count; i++ {
		p := posAt(i, size).Add(offset)
		list, ok, err := g.IsTracked(p)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			continue
		}
		total++
		idx, err := g.idx.Get(p)
		if err != nil {
			t.Fatal(err)
		}
		lst := g.List(list)
		if int(idx) >= len(lst) || !lst[idx].Equal(p) {
			t.Fatalf("invariant A violated at %v: idx %d, list[%d]=%v", p, idx, idx, lst)
		}
	}
	sumLists := 0
	for k := 0; k < g.nLists; k++ {
		sumLists += g.ListLen(k)
	}
	if sumLists != total {
		t.Fatalf("sum of list lengths %d != tracked count %d", sumLists, total)
	}
}

func TestSingleLookupTrackUntrack(t *testing.T) {
	size := felt.VecDi{5, 5}
	offset := felt.VecDi{0, 0}
	g, err := NewSingleLookup(size, offset, 3)
	if err != nil {
		t.Fatal(err)
	}
	positions := []felt.VecDi{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	for i, p := range positions {
		ok, err := g.Track(p, i%3)
		if err != nil || !ok {
			t.Fatalf("track %v failed: %v, %v", p, ok, err)
		}
	}
	checkSingleLookupInvariant(t, g, size, offset)

	// Re-tracking an already-tracked position (even in a different list)
	// must fail, since a cell belongs to at most one list.
	if ok, err := g.Track(positions[0], 1); err != nil || ok {
		t.Fatalf("expected re-track to be a no-op false, got %v, %v", ok, err)
	}

	// Untrack the middle position and verify swap-remove preserved the
	// invariant (the former tail's index must now point at the hole).
	if err := g.Untrack(positions[2], 2); err != nil {
		t.Fatal(err)
	}
	checkSingleLookupInvariant(t, g, size, offset)

	// Untracking from the wrong list is a no-op.
	if err := g.Untrack(positions[1], 2); err != nil {
		t.Fatal(err)
	}
	if list, ok, _ := g.IsTracked(positions[1]); !ok || list != 1 {
		t.Fatalf("expected %v still tracked in list 1, got ok=%v list=%d", positions[1], ok, list)
	}
}

func TestSingleLookupReset(t *testing.T) {
	g, err := NewSingleLookup(felt.VecDi{4, 4}, felt.VecDi{0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	ps := []felt.VecDi{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	for _, p := range ps {
		if _, err := g.Track(p, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Reset(0); err != nil {
		t.Fatal(err)
	}
	if g.ListLen(0) != 0 {
		t.Fatalf("expected list 0 empty after reset, got %d", g.ListLen(0))
	}
	for _, p := range ps {
		if _, ok, _ := g.IsTracked(p); ok {
			t.Fatalf("expected %v untracked after reset", p)
		}
	}
}

func TestMultiLookupConcurrentMembership(t *testing.T) {
	g, err := NewMultiLookup(felt.VecDi{3, 3}, felt.VecDi{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	p := felt.VecDi{1, 1}
	for _, list := range []int{0, 1, 2} {
		ok, err := g.Track(p, list)
		if err != nil || !ok {
			t.Fatalf("track list %d: %v, %v", list, ok, err)
		}
	}
	for _, list := range []int{0, 1, 2} {
		ok, err := g.IsTrackedIn(p, list)
		if err != nil || !ok {
			t.Fatalf("expected %v tracked in list %d", p, list)
		}
	}
	if err := g.Untrack(p, 1); err != nil {
		t.Fatal(err)
	}
	if ok, _ := g.IsTrackedIn(p, 1); ok {
		t.Fatal("expected list 1 membership removed")
	}
	if ok, _ := g.IsTrackedIn(p, 0); !ok {
		t.Fatal("expected list 0 membership untouched")
	}
	if ok, _ := g.IsTrackedIn(p, 2); !ok {
		t.Fatal("expected list 2 membership untouched")
	}
}

func TestMultiLookupSwapRemove(t *testing.T) {
	g, err := NewMultiLookup(felt.VecDi{10, 10}, felt.VecDi{0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	ps := []felt.VecDi{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	for _, p := range ps {
		if _, err := g.Track(p, 0); err != nil {
			t.Fatal(err)
		}
	}
	// Remove from the middle; the tail should now sit at the vacated slot.
	if err := g.Untrack(ps[1], 0); err != nil {
		t.Fatal(err)
	}
	lst := g.List(0)
	if len(lst) != 4 {
		t.Fatalf("expected 4 remaining, got %d", len(lst))
	}
	tailIdx, err := g.idxs[0].Get(ps[4])
	if err != nil {
		t.Fatal(err)
	}
	if !lst[tailIdx].Equal(ps[4]) {
		t.Fatalf("swap-remove invariant violated: list[%d] = %v, want %v", tailIdx, lst[tailIdx], ps[4])
	}
}
