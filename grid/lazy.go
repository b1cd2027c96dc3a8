package grid

import "github.com/feltech/felt"

func inBox(p, offset, size felt.VecDi) bool {
	if len(p) != len(size) {
		return false
	}
	for i := range p {
		if p[i] < offset[i] || p[i] >= offset[i]+size[i] {
			return false
		}
	}
	return true
}

// LazyTracked is a Tracked grid whose backing storage is allocated on
// first Activate and released on Deactivate. While inactive, Get returns
// the background value and Set/Track fail. It is the grid flavour used as
// a partitioned grid's child.
type LazyTracked[T any] struct {
	size       felt.VecDi
	offset     felt.VecDi
	background T
	nLists     int
	active     bool
	grid       *Tracked[T]
}

// NewLazyTracked constructs an inactive lazy tracked grid of the given
// size, offset, background and list count. No storage is allocated until
// Activate is called.
func NewLazyTracked[T any](size, offset felt.VecDi, background T, nLists int) (*LazyTracked[T], error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	return &LazyTracked[T]{
		size:       size.Clone(),
		offset:     offset.Clone(),
		background: background,
		nLists:     nLists,
	}, nil
}

// IsActive reports whether storage is currently allocated.
func (g *LazyTracked[T]) IsActive() bool { return g.active }

// Size returns a copy of the grid's size (valid whether active or not).
func (g *LazyTracked[T]) Size() felt.VecDi { return g.size.Clone() }

// Offset returns a copy of the grid's offset.
func (g *LazyTracked[T]) Offset() felt.VecDi { return g.offset.Clone() }

// Background returns the grid's background value.
func (g *LazyTracked[T]) Background() T { return g.background }

// NumLists returns N, the number of position lists.
func (g *LazyTracked[T]) NumLists() int { return g.nLists }

// Inside reports whether p lies within the grid's extents.
func (g *LazyTracked[T]) Inside(p felt.VecDi) bool { return inBox(p, g.offset, g.size) }

// Activate allocates storage and fills it with background. No-op if
// already active.
func (g *LazyTracked[T]) Activate() error {
	if g.active {
		return nil
	}
	t, err := NewTracked[T](g.size, g.offset, g.background, g.nLists)
	if err != nil {
		return err
	}
	g.grid = t
	g.active = true
	return nil
}

// Deactivate releases storage, including the lookup lists. No-op if
// already inactive.
func (g *LazyTracked[T]) Deactivate() {
	g.grid = nil
	g.active = false
}

// Resize changes size/offset. Only permitted while inactive.
func (g *LazyTracked[T]) Resize(size, offset felt.VecDi) error {
	if g.active {
		return ErrActiveGrid
	}
	if err := validateSize(size); err != nil {
		return err
	}
	g.size = size.Clone()
	g.offset = offset.Clone()
	return nil
}

// Data returns the active grid's raw backing slice, or nil if inactive.
// Used by the bulk-apply path (BulkAxpy) to operate directly on a
// partition's contiguous storage instead of cell-by-cell.
func (g *LazyTracked[T]) Data() []T {
	if !g.active {
		return nil
	}
	return g.grid.Data()
}

// Get returns the value at p: the background value if inactive, the
// stored value if active. Returns felt.ErrOutOfBounds if p is outside the
// grid's extents regardless of activation state.
func (g *LazyTracked[T]) Get(p felt.VecDi) (T, error) {
	if !g.Inside(p) {
		var zero T
		return zero, felt.ErrOutOfBounds
	}
	if !g.active {
		return g.background, nil
	}
	return g.grid.values.GetIdx(g.grid.values.Index(p)), nil
}

// SetValue writes v at p without touching list membership. Fails with
// felt.ErrInactiveGrid if the grid is not active.
func (g *LazyTracked[T]) SetValue(p felt.VecDi, v T) error {
	if !g.Inside(p) {
		return felt.ErrOutOfBounds
	}
	if !g.active {
		return felt.ErrInactiveGrid
	}
	return g.grid.SetValue(p, v)
}

// Track sets p's value to v and tracks it in list. The grid must already
// be active (the partitioned grid is responsible for activating children
// before tracking into them).
func (g *LazyTracked[T]) Track(v T, p felt.VecDi, list int) (bool, error) {
	if !g.active {
		return false, felt.ErrInactiveGrid
	}
	return g.grid.Track(v, p, list)
}

// Untrack removes p from list. No-op (not an error) if the grid is
// inactive, since an inactive grid has no tracked cells.
func (g *LazyTracked[T]) Untrack(p felt.VecDi, list int) error {
	if !g.active {
		return nil
	}
	return g.grid.Untrack(p, list)
}

// Reset restores background to every cell in list, then clears it. No-op
// if inactive.
func (g *LazyTracked[T]) Reset(list int) error {
	if !g.active {
		return nil
	}
	return g.grid.Reset(list)
}

// List returns the live position list for list k, or nil if inactive.
func (g *LazyTracked[T]) List(k int) []felt.VecDi {
	if !g.active {
		return nil
	}
	return g.grid.List(k)
}

// ListLen returns the number of positions tracked in list k, 0 if inactive.
func (g *LazyTracked[T]) ListLen(k int) int {
	if !g.active {
		return 0
	}
	return g.grid.ListLen(k)
}

// AnyTracked reports whether any of the grid's lists are non-empty; always
// false if inactive.
func (g *LazyTracked[T]) AnyTracked() bool {
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

// IsTracked reports whether p is a member of any list; always false if
// inactive.
func (g *LazyTracked[T]) IsTracked(p felt.VecDi) (list int, ok bool, err error) {
	if !g.active {
		return 0, false, nil
	}
	return g.grid.IsTracked(p)
}
