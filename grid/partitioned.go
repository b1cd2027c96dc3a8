package grid

import (
	"sync"

	"github.com/feltech/felt"
)

// Partitioned is the top-level coordinator grid: a tiling of
// world space into `child_size`-sized lazy tracked children, with a
// partition-level multi-index lookup recording which children currently
// hold tracked cells in each list. Track is the only operation that
// activates children; Untrack deactivates a child once none of its lists
// holds a cell; Retrack never deactivates.
type Partitioned[T any] struct {
	size       felt.VecDi
	offset     felt.VecDi
	childSize  felt.VecDi
	gridSize   felt.VecDi // number of children per axis
	background T
	nLists     int

	children   []*LazyTracked[T]
	partLookup *MultiLookup
	mus        []sync.Mutex
	lookupMu   sync.Mutex // guards partLookup: its lists are shared across partitions
}

// NewPartitioned allocates a partitioned grid covering `size` cells from
// `offset`, tiled into children of `childSize` (the last tile along any
// axis may be partial if childSize does not evenly divide size).
func NewPartitioned[T any](size, offset, childSize felt.VecDi, background T, nLists int) (*Partitioned[T], error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	if err := validateSize(childSize); err != nil {
		return nil, err
	}
	d := len(size)
	gridSize := make(felt.VecDi, d)
	for i := 0; i < d; i++ {
		gridSize[i] = (size[i] + childSize[i] - 1) / childSize[i]
	}
	n := gridSize.Product()
	children := make([]*LazyTracked[T], n)
	for i := 0; i < n; i++ {
		cpos := posAt(i, gridSize)
		childOffset := offset.Add(cpos.Mul(childSize))
		child, err := NewLazyTracked[T](childSize, childOffset, background, nLists)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	partLookup, err := NewMultiLookup(gridSize, felt.NewVecDi(d), nLists)
	if err != nil {
		return nil, err
	}
	return &Partitioned[T]{
		size:       size.Clone(),
		offset:     offset.Clone(),
		childSize:  childSize.Clone(),
		gridSize:   gridSize,
		background: background,
		nLists:     nLists,
		children:   children,
		partLookup: partLookup,
		mus:        make([]sync.Mutex, n),
	}, nil
}

func linearIndex(p, size felt.VecDi) int {
	idx := 0
	for i := range p {
		idx = idx*size[i] + p[i]
	}
	return idx
}

func posAt(idx int, size felt.VecDi) felt.VecDi {
	d := len(size)
	coords := make(felt.VecDi, d)
	for i := d - 1; i >= 0; i-- {
		coords[i] = idx % size[i]
		idx /= size[i]
	}
	return coords
}

// Size returns a copy of the grid's world-space size.
func (pg *Partitioned[T]) Size() felt.VecDi { return pg.size.Clone() }

// Offset returns a copy of the grid's world-space offset.
func (pg *Partitioned[T]) Offset() felt.VecDi { return pg.offset.Clone() }

// ChildSize returns a copy of the per-child size.
func (pg *Partitioned[T]) ChildSize() felt.VecDi { return pg.childSize.Clone() }

// GridSize returns the number of children along each axis.
func (pg *Partitioned[T]) GridSize() felt.VecDi { return pg.gridSize.Clone() }

// Background returns the grid's background value.
func (pg *Partitioned[T]) Background() T { return pg.background }

// NumLists returns N, the number of position lists.
func (pg *Partitioned[T]) NumLists() int { return pg.nLists }

// NumChildren returns the total number of children.
func (pg *Partitioned[T]) NumChildren() int { return len(pg.children) }

// Inside reports whether p lies within the grid's world-space extents.
func (pg *Partitioned[T]) Inside(p felt.VecDi) bool { return inBox(p, pg.offset, pg.size) }

// childIndex maps a world position to (linear child index, child
// multi-index), or returns felt.ErrOutOfBounds if p lies outside the grid.
func (pg *Partitioned[T]) childIndex(p felt.VecDi) (int, felt.VecDi, error) {
	if !pg.Inside(p) {
		return 0, nil, felt.ErrOutOfBounds
	}
	cpos := p.Sub(pg.offset).DivFloor(pg.childSize)
	return linearIndex(cpos, pg.gridSize), cpos, nil
}

// ChildAt returns the child covering child multi-index cpos.
func (pg *Partitioned[T]) ChildAt(cpos felt.VecDi) *LazyTracked[T] {
	return pg.children[linearIndex(cpos, pg.gridSize)]
}

// ChildIdx returns the child at linear partition index i, the same
// indexing Children() enumerates over.
func (pg *Partitioned[T]) ChildIdx(i int) *LazyTracked[T] {
	return pg.children[i]
}

// ChildPos returns the child multi-index of linear partition index i, the
// inverse of the indexing ChildAt/ChildIdx use.
func (pg *Partitioned[T]) ChildPos(i int) felt.VecDi {
	return posAt(i, pg.gridSize)
}

// ChildContaining returns the child that would own world position p,
// regardless of whether p is currently tracked or the child is active.
func (pg *Partitioned[T]) ChildContaining(p felt.VecDi) (*LazyTracked[T], felt.VecDi, error) {
	ci, cpos, err := pg.childIndex(p)
	if err != nil {
		return nil, nil, err
	}
	return pg.children[ci], cpos, nil
}

// Get routes to the owning child and reads p (background if the child is
// inactive).
func (pg *Partitioned[T]) Get(p felt.VecDi) (T, error) {
	ci, _, err := pg.childIndex(p)
	if err != nil {
		var zero T
		return zero, err
	}
	return pg.children[ci].Get(p)
}

// Set routes to the owning child and writes v at p. The child must
// already be active.
func (pg *Partitioned[T]) Set(p felt.VecDi, v T) error {
	ci, _, err := pg.childIndex(p)
	if err != nil {
		return err
	}
	return pg.children[ci].SetValue(p, v)
}

// Track performs the atomic activate-then-track protocol: lock the owning
// partition, activate its child if necessary, register the child with the
// partition-level lookup if this is its first cell in list, unlock, then
// track (v, p, list) in the child.
func (pg *Partitioned[T]) Track(v T, p felt.VecDi, list int) (bool, error) {
	ci, cpos, err := pg.childIndex(p)
	if err != nil {
		return false, err
	}
	mu := &pg.mus[ci]
	mu.Lock()
	child := pg.children[ci]
	if !child.IsActive() {
		if err := child.Activate(); err != nil {
			mu.Unlock()
			return false, err
		}
	}
	if err := pg.trackPartition(cpos, list); err != nil {
		mu.Unlock()
		return false, err
	}
	mu.Unlock()
	return child.Track(v, p, list)
}

// trackPartition registers cpos with the partition-level lookup in list if
// not already present. The lookup's lists are shared across every
// partition, so this is the one place concurrent Track calls on distinct
// partitions contend; lookupMu is always acquired inside the owning
// partition's mutex, never the other way round.
func (pg *Partitioned[T]) trackPartition(cpos felt.VecDi, list int) error {
	pg.lookupMu.Lock()
	defer pg.lookupMu.Unlock()
	tracked, err := pg.partLookup.IsTrackedIn(cpos, list)
	if err != nil {
		return err
	}
	if !tracked {
		if _, err := pg.partLookup.Track(cpos, list); err != nil {
			return err
		}
	}
	return nil
}

// untrackPartition removes cpos from the partition-level lookup in list.
func (pg *Partitioned[T]) untrackPartition(cpos felt.VecDi, list int) error {
	pg.lookupMu.Lock()
	defer pg.lookupMu.Unlock()
	return pg.partLookup.Untrack(cpos, list)
}

// Untrack removes p from list in its child, then — if and only if the
// child's list is now empty — untracks the child from the partition-level
// lookup, deactivating the child if it now has no active lists at all.
func (pg *Partitioned[T]) Untrack(p felt.VecDi, list int) error {
	ci, cpos, err := pg.childIndex(p)
	if err != nil {
		return err
	}
	child := pg.children[ci]
	if err := child.Untrack(p, list); err != nil {
		return err
	}
	mu := &pg.mus[ci]
	mu.Lock()
	defer mu.Unlock()
	if child.ListLen(list) == 0 {
		if err := pg.untrackPartition(cpos, list); err != nil {
			return err
		}
	}
	if !child.AnyTracked() {
		child.Deactivate()
	}
	return nil
}

// Retrack moves p from list `from` to list `to` without ever deactivating
// the owning child, even transiently — the correct primitive to use when
// a cell is merely moving between layers.
func (pg *Partitioned[T]) Retrack(p felt.VecDi, from, to int) error {
	ci, cpos, err := pg.childIndex(p)
	if err != nil {
		return err
	}
	child := pg.children[ci]
	mu := &pg.mus[ci]

	mu.Lock()
	if !child.IsActive() {
		if err := child.Activate(); err != nil {
			mu.Unlock()
			return err
		}
	}
	if err := pg.trackPartition(cpos, to); err != nil {
		mu.Unlock()
		return err
	}
	mu.Unlock()

	v, err := child.Get(p)
	if err != nil {
		return err
	}
	if err := child.Untrack(p, from); err != nil {
		return err
	}
	if _, err := child.Track(v, p, to); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if child.ListLen(from) == 0 {
		if err := pg.untrackPartition(cpos, from); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores background to, and untracks, every cell currently
// tracked in list across every active child, then deactivates any child
// left with no tracked cells at all. Partitions are processed one at a
// time to completion, so this is safe even though it deactivates children
// mid-walk.
func (pg *Partitioned[T]) Reset(list int) error {
	parts := append([]felt.VecDi(nil), pg.partLookup.List(list)...)
	for _, cpos := range parts {
		child := pg.ChildAt(cpos)
		if err := child.Reset(list); err != nil {
			return err
		}
		if err := pg.untrackPartition(cpos, list); err != nil {
			return err
		}
		if !child.AnyTracked() {
			child.Deactivate()
		}
	}
	return nil
}

// Children exposes the partition-level lookup's iteration entry point:
// List(k) yields the child multi-index positions currently holding
// tracked cells in list k.
func (pg *Partitioned[T]) Children() *MultiLookup { return pg.partLookup }
