package grid

import "github.com/feltech/felt"

// SingleLookup is a dense grid of indices into N position lists, where a
// given cell belongs to at most one list at a time (the "single-index
// variant"). It is the lookup flavour used by every tracked grid in the
// surface engine, where a cell is always in exactly one layer list (or
// none) at once.
type SingleLookup struct {
	idx    *Dense[uint32] // index into owner's list, or felt.NullIdx
	owner  *Dense[int8]   // which list currently owns this cell, or -1
	lists  [][]felt.VecDi
	nLists int
}

// NewSingleLookup allocates a single-index lookup grid with nLists
// position lists.
func NewSingleLookup(size, offset felt.VecDi, nLists int) (*SingleLookup, error) {
	idx, err := NewDense[uint32](size, offset, felt.NullIdx)
	if err != nil {
		return nil, err
	}
	owner, err := NewDense[int8](size, offset, -1)
	if err != nil {
		return nil, err
	}
	return &SingleLookup{
		idx:    idx,
		owner:  owner,
		lists:  make([][]felt.VecDi, nLists),
		nLists: nLists,
	}, nil
}

// Size returns a copy of the lookup grid's size.
func (g *SingleLookup) Size() felt.VecDi { return g.idx.Size() }

// Offset returns a copy of the lookup grid's offset.
func (g *SingleLookup) Offset() felt.VecDi { return g.idx.Offset() }

// NumLists returns N, the number of position lists.
func (g *SingleLookup) NumLists() int { return g.nLists }

// Inside reports whether p lies within the grid.
func (g *SingleLookup) Inside(p felt.VecDi) bool { return g.idx.Inside(p) }

// IsTracked reports whether p is currently a member of any list, and if
// so, which one.
func (g *SingleLookup) IsTracked(p felt.VecDi) (list int, ok bool, err error) {
	owner, err := g.owner.Get(p)
	if err != nil {
		return 0, false, err
	}
	if owner < 0 {
		return 0, false, nil
	}
	return int(owner), true, nil
}

// Track appends p to list if p is not already a member of any list
// (single-index: a position is in at most one list at a time). Returns
// false without effect if p was already tracked anywhere.
func (g *SingleLookup) Track(p felt.VecDi, list int) (bool, error) {
	owner, err := g.owner.Get(p)
	if err != nil {
		return false, err
	}
	if owner >= 0 {
		return false, nil
	}
	g.lists[list] = append(g.lists[list], p.Clone())
	idx := uint32(len(g.lists[list]) - 1)
	if err := g.idx.Set(p, idx); err != nil {
		return false, err
	}
	if err := g.owner.Set(p, int8(list)); err != nil {
		return false, err
	}
	return true, nil
}

// Untrack removes p from list via swap-remove with the tail of the list,
// updating the swapped position's index so the list stays dense. No-op if
// p is not currently tracked in list.
func (g *SingleLookup) Untrack(p felt.VecDi, list int) error {
	owner, err := g.owner.Get(p)
	if err != nil {
		return err
	}
	if int(owner) != list {
		return nil
	}
	idx, err := g.idx.Get(p)
	if err != nil {
		return err
	}
	return g.swapRemove(p, list, idx)
}

func (g *SingleLookup) swapRemove(p felt.VecDi, list int, idx uint32) error {
	lst := g.lists[list]
	last := len(lst) - 1
	tail := lst[last]
	if int(idx) != last {
		lst[idx] = tail
		if err := g.idx.Set(tail, idx); err != nil {
			return err
		}
	}
	g.lists[list] = lst[:last]
	if err := g.idx.Set(p, felt.NullIdx); err != nil {
		return err
	}
	return g.owner.Set(p, -1)
}

// Reset untracks every position currently in list and clears it.
func (g *SingleLookup) Reset(list int) error {
	for _, p := range g.lists[list] {
		if err := g.idx.Set(p, felt.NullIdx); err != nil {
			return err
		}
		if err := g.owner.Set(p, -1); err != nil {
			return err
		}
	}
	g.lists[list] = g.lists[list][:0]
	return nil
}

// List returns the live position list for list k. Callers must treat it as
// read-only; mutate the lookup grid only through Track/Untrack/Reset.
func (g *SingleLookup) List(k int) []felt.VecDi { return g.lists[k] }

// ListLen returns the number of positions currently tracked in list k.
func (g *SingleLookup) ListLen(k int) int { return len(g.lists[k]) }

// MultiLookup is a lookup grid where a cell may belong to several of its N
// position lists concurrently (the "multi-index variant"). It is
// implemented as N independent index arrays sharing size/offset, which
// is semantically equivalent to a single cell holding a tuple of N indices
// and considerably simpler to get right (see DESIGN.md).
type MultiLookup struct {
	idxs   []*Dense[uint32]
	lists  [][]felt.VecDi
	nLists int
	size   felt.VecDi
	offset felt.VecDi
}

// NewMultiLookup allocates a multi-index lookup grid with nLists position
// lists.
func NewMultiLookup(size, offset felt.VecDi, nLists int) (*MultiLookup, error) {
	idxs := make([]*Dense[uint32], nLists)
	for i := range idxs {
		d, err := NewDense[uint32](size, offset, felt.NullIdx)
		if err != nil {
			return nil, err
		}
		idxs[i] = d
	}
	return &MultiLookup{
		idxs:   idxs,
		lists:  make([][]felt.VecDi, nLists),
		nLists: nLists,
		size:   size.Clone(),
		offset: offset.Clone(),
	}, nil
}

// Size returns a copy of the lookup grid's size.
func (g *MultiLookup) Size() felt.VecDi { return g.size.Clone() }

// Offset returns a copy of the lookup grid's offset.
func (g *MultiLookup) Offset() felt.VecDi { return g.offset.Clone() }

// NumLists returns N, the number of position lists.
func (g *MultiLookup) NumLists() int { return g.nLists }

// IsTrackedIn reports whether p is a member of list k.
func (g *MultiLookup) IsTrackedIn(p felt.VecDi, list int) (bool, error) {
	idx, err := g.idxs[list].Get(p)
	if err != nil {
		return false, err
	}
	return idx != felt.NullIdx, nil
}

// Track appends p to list if it is not already a member of list (a
// position may already be a member of other lists). Returns false without
// effect if p was already tracked in list specifically.
func (g *MultiLookup) Track(p felt.VecDi, list int) (bool, error) {
	cur, err := g.idxs[list].Get(p)
	if err != nil {
		return false, err
	}
	if cur != felt.NullIdx {
		return false, nil
	}
	g.lists[list] = append(g.lists[list], p.Clone())
	idx := uint32(len(g.lists[list]) - 1)
	if err := g.idxs[list].Set(p, idx); err != nil {
		return false, err
	}
	return true, nil
}

// Untrack removes p from list via swap-remove, no-op if not tracked there.
func (g *MultiLookup) Untrack(p felt.VecDi, list int) error {
	idx, err := g.idxs[list].Get(p)
	if err != nil {
		return err
	}
	if idx == felt.NullIdx {
		return nil
	}
	lst := g.lists[list]
	last := len(lst) - 1
	tail := lst[last]
	if int(idx) != last {
		lst[idx] = tail
		if err := g.idxs[list].Set(tail, idx); err != nil {
			return err
		}
	}
	g.lists[list] = lst[:last]
	return g.idxs[list].Set(p, felt.NullIdx)
}

// Reset untracks every position currently in list and clears it.
func (g *MultiLookup) Reset(list int) error {
	for _, p := range g.lists[list] {
		if err := g.idxs[list].Set(p, felt.NullIdx); err != nil {
			return err
		}
	}
	g.lists[list] = g.lists[list][:0]
	return nil
}

// List returns the live position list for list k.
func (g *MultiLookup) List(k int) []felt.VecDi { return g.lists[k] }

// ListLen returns the number of positions currently tracked in list k.
func (g *MultiLookup) ListLen(k int) int { return len(g.lists[k]) }

// AnyTracked reports whether p belongs to at least one list. It scans
// all N index grids, which is cheap since N is small (2L+1).
func (g *MultiLookup) AnyTracked(p felt.VecDi) (bool, error) {
	for k := range g.idxs {
		ok, err := g.IsTrackedIn(p, k)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
