package grid

import "github.com/feltech/felt"

// Tracked is a dense value grid of T fused with a single-index lookup grid
// of matching size and offset: operations that change a cell's value also
// update its list membership.
type Tracked[T any] struct {
	values *Dense[T]
	lookup *SingleLookup
}

// NewTracked allocates a tracked grid with nLists position lists.
func NewTracked[T any](size, offset felt.VecDi, background T, nLists int) (*Tracked[T], error) {
	values, err := NewDense[T](size, offset, background)
	if err != nil {
		return nil, err
	}
	lookup, err := NewSingleLookup(size, offset, nLists)
	if err != nil {
		return nil, err
	}
	return &Tracked[T]{values: values, lookup: lookup}, nil
}

// Size returns a copy of the grid's size.
func (g *Tracked[T]) Size() felt.VecDi { return g.values.Size() }

// Offset returns a copy of the grid's offset.
func (g *Tracked[T]) Offset() felt.VecDi { return g.values.Offset() }

// Background returns the grid's background value.
func (g *Tracked[T]) Background() T { return g.values.Background() }

// Inside reports whether p lies within the grid.
func (g *Tracked[T]) Inside(p felt.VecDi) bool { return g.values.Inside(p) }

// Get returns the value at p.
func (g *Tracked[T]) Get(p felt.VecDi) (T, error) { return g.values.Get(p) }

// SetValue writes v at p without touching list membership; used when a
// cell's value changes but its tracked layer does not (e.g. applying a
// delta before the status change is known).
func (g *Tracked[T]) SetValue(p felt.VecDi, v T) error { return g.values.Set(p, v) }

// Data returns the raw backing value slice.
func (g *Tracked[T]) Data() []T { return g.values.Data() }

// Index converts a world position to a linear array index.
func (g *Tracked[T]) Index(p felt.VecDi) int { return g.values.Index(p) }

// PosAt converts a linear array index back to a world position.
func (g *Tracked[T]) PosAt(idx int) felt.VecDi { return g.values.PosAt(idx) }

// IsTracked reports whether p is a member of any list, and if so, which.
func (g *Tracked[T]) IsTracked(p felt.VecDi) (list int, ok bool, err error) {
	return g.lookup.IsTracked(p)
}

// Track sets p's value to v and appends p to list: set(p,v) then lookup
// track(p,list).
func (g *Tracked[T]) Track(v T, p felt.VecDi, list int) (bool, error) {
	if err := g.values.Set(p, v); err != nil {
		return false, err
	}
	return g.lookup.Track(p, list)
}

// Untrack removes p from list (its value is left untouched; callers that
// want the background restored should use Reset).
func (g *Tracked[T]) Untrack(p felt.VecDi, list int) error {
	return g.lookup.Untrack(p, list)
}

// Reset restores background to every cell in list, then clears list: for
// each p in the list, set(p, background), then lookup reset(list).
func (g *Tracked[T]) Reset(list int) error {
	for _, p := range g.lookup.List(list) {
		if err := g.values.Set(p, g.values.Background()); err != nil {
			return err
		}
	}
	return g.lookup.Reset(list)
}

// List returns the live position list for list k.
func (g *Tracked[T]) List(k int) []felt.VecDi { return g.lookup.List(k) }

// ListLen returns the number of positions tracked in list k.
func (g *Tracked[T]) ListLen(k int) int { return g.lookup.ListLen(k) }

// NumLists returns N, the number of position lists.
func (g *Tracked[T]) NumLists() int { return g.lookup.NumLists() }
