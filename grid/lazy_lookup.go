package grid

import "github.com/feltech/felt"

// LazyLookup is a SingleLookup whose backing storage is allocated on first
// Activate and released on Deactivate — the lazy-activation treatment
// applied to a lookup-only, no-value grid.
type LazyLookup struct {
	size   felt.VecDi
	offset felt.VecDi
	nLists int
	active bool
	grid   *SingleLookup
}

// NewLazyLookup constructs an inactive lazy lookup grid.
func NewLazyLookup(size, offset felt.VecDi, nLists int) (*LazyLookup, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	return &LazyLookup{size: size.Clone(), offset: offset.Clone(), nLists: nLists}, nil
}

// IsActive reports whether storage is currently allocated.
func (g *LazyLookup) IsActive() bool { return g.active }

// Size returns a copy of the grid's size.
func (g *LazyLookup) Size() felt.VecDi { return g.size.Clone() }

// Offset returns a copy of the grid's offset.
func (g *LazyLookup) Offset() felt.VecDi { return g.offset.Clone() }

// Inside reports whether p lies within the grid's extents.
func (g *LazyLookup) Inside(p felt.VecDi) bool { return inBox(p, g.offset, g.size) }

// Activate allocates storage. No-op if already active.
func (g *LazyLookup) Activate() error {
	if g.active {
		return nil
	}
	l, err := NewSingleLookup(g.size, g.offset, g.nLists)
	if err != nil {
		return err
	}
	g.grid = l
	g.active = true
	return nil
}

// Deactivate releases storage. No-op if already inactive.
func (g *LazyLookup) Deactivate() {
	g.grid = nil
	g.active = false
}

// Track tracks p in list; the grid must already be active.
func (g *LazyLookup) Track(p felt.VecDi, list int) (bool, error) {
	if !g.active {
		return false, felt.ErrInactiveGrid
	}
	return g.grid.Track(p, list)
}

// Untrack removes p from list; no-op if inactive.
func (g *LazyLookup) Untrack(p felt.VecDi, list int) error {
	if !g.active {
		return nil
	}
	return g.grid.Untrack(p, list)
}

// Reset clears list; no-op if inactive.
func (g *LazyLookup) Reset(list int) error {
	if !g.active {
		return nil
	}
	return g.grid.Reset(list)
}

// List returns the live position list for list k, or nil if inactive.
func (g *LazyLookup) List(k int) []felt.VecDi {
	if !g.active {
		return nil
	}
	return g.grid.List(k)
}

// ListLen returns the number of positions tracked in list k.
func (g *LazyLookup) ListLen(k int) int {
	if !g.active {
		return 0
	}
	return g.grid.ListLen(k)
}

// AnyTracked reports whether any list is non-empty.
func (g *LazyLookup) AnyTracked() bool {
	if !g.active {
		return false
	}
	for k := 0; k < g.nLists; k++ {
		if g.grid.ListLen(k) > 0 {
			return true
		}
	}
	return false
}
