// Package grid implements the spatial substrate Felt's surface engine and
// polygoniser are built on: a fixed-size dense array grid, lookup grids
// that pair a dense index array with position lists, tracked grids that
// fuse a value grid with a lookup grid, lazily-activated wrappers around
// those, and a partitioned grid that tiles lazy tracked children over
// space and routes leaf operations to the child that owns them.
package grid

import (
	"github.com/feltech/felt"
)

// Dense is a fixed-size, eagerly-allocated D-dimensional array of T, plus
// the size/offset pair that maps world positions to array indices.
type Dense[T any] struct {
	size       felt.VecDi
	offset     felt.VecDi
	data       []T
	background T
}

// NewDense allocates a Dense grid of the given size and offset, filled
// with background. Returns felt.ErrInvalidDimensions if any size component
// is non-positive.
func NewDense[T any](size, offset felt.VecDi, background T) (*Dense[T], error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	g := &Dense[T]{
		size:       size.Clone(),
		offset:     offset.Clone(),
		background: background,
	}
	g.data = make([]T, size.Product())
	g.Fill(background)
	return g, nil
}

func validateSize(size felt.VecDi) error {
	if len(size) == 0 {
		return felt.ErrInvalidDimensions
	}
	for _, s := range size {
		if s <= 0 {
			return felt.ErrInvalidDimensions
		}
	}
	return nil
}

// Dim returns the dimensionality D of the grid.
func (g *Dense[T]) Dim() int { return len(g.size) }

// Size returns a copy of the grid's size vector.
func (g *Dense[T]) Size() felt.VecDi { return g.size.Clone() }

// Offset returns a copy of the grid's offset vector.
func (g *Dense[T]) Offset() felt.VecDi { return g.offset.Clone() }

// Background returns the grid's background value.
func (g *Dense[T]) Background() T { return g.background }

// Data returns the raw backing slice, row-major with the last axis most
// rapidly varying. Callers must not change its length.
func (g *Dense[T]) Data() []T { return g.data }

// Inside reports whether p lies within [offset, offset+size) componentwise.
func (g *Dense[T]) Inside(p felt.VecDi) bool {
	if len(p) != len(g.size) {
		return false
	}
	for i := range p {
		if p[i] < g.offset[i] || p[i] >= g.offset[i]+g.size[i] {
			return false
		}
	}
	return true
}

// Index converts a world position to a linear array index, row-major with
// the last axis varying fastest.
func (g *Dense[T]) Index(p felt.VecDi) int {
	idx := 0
	for i := range p {
		idx = idx*g.size[i] + (p[i] - g.offset[i])
	}
	return idx
}

// PosAt converts a linear array index back to a world position. It is the
// exact inverse of Index: g.PosAt(g.Index(p)) == p for any p inside g.
func (g *Dense[T]) PosAt(idx int) felt.VecDi {
	d := len(g.size)
	coords := make(felt.VecDi, d)
	for i := d - 1; i >= 0; i-- {
		coords[i] = idx % g.size[i]
		idx /= g.size[i]
	}
	for i := range coords {
		coords[i] += g.offset[i]
	}
	return coords
}

// Get returns the value at p, or felt.ErrOutOfBounds if p is outside the
// grid.
func (g *Dense[T]) Get(p felt.VecDi) (T, error) {
	if err := felt.CheckInside(p, g.offset, g.size, true); err != nil {
		var zero T
		return zero, err
	}
	return g.data[g.Index(p)], nil
}

// Set writes v at p, or returns felt.ErrOutOfBounds if p is outside the
// grid.
func (g *Dense[T]) Set(p felt.VecDi, v T) error {
	if err := felt.CheckInside(p, g.offset, g.size, true); err != nil {
		return err
	}
	g.data[g.Index(p)] = v
	return nil
}

// GetIdx returns the value at the given linear index without bounds
// checking; used by hot loops that already have a validated index in hand.
func (g *Dense[T]) GetIdx(idx int) T { return g.data[idx] }

// SetIdx writes v at the given linear index without bounds checking.
func (g *Dense[T]) SetIdx(idx int, v T) { g.data[idx] = v }

// Fill overwrites every cell with v.
func (g *Dense[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Resize changes the grid's size and offset, reallocating storage and
// refilling with the current background value.
func (g *Dense[T]) Resize(size, offset felt.VecDi) error {
	if err := validateSize(size); err != nil {
		return err
	}
	g.size = size.Clone()
	g.offset = offset.Clone()
	g.data = make([]T, size.Product())
	g.Fill(g.background)
	return nil
}
