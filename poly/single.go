package poly

import (
	"math"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
)

// vtxEpsilon is the "close enough to treat as exact" tolerance used when
// deciding whether a zero-crossing vertex sits at an edge endpoint or
// midpoint rather than requiring interpolation; the surface engine
// already standardises on felt.Epsilon for comparisons of this kind.
const vtxEpsilon = felt.Epsilon

// Vertex is one interpolated zero-crossing point. Normal is the unit
// surface normal at Pos, populated only in 3D.
type Vertex struct {
	Pos    felt.VecDf
	Normal felt.VecDf
}

// Simplex is one polygonisation primitive: a line segment in 2D (2
// indices) or a triangle in 3D (3 indices), each indexing ChildPoly.Vtxs.
type Simplex struct {
	Idxs []uint32
}

// ChildPoly polygonises the narrow band within a single isogrid
// partition, overlapping its neighbours by one cell on every face so
// that a zero-crossing straddling a partition boundary is captured by
// both partitions identically.
//
// Like the isogrid's own children, a ChildPoly is lazily activated: its
// vertex-index cache is only allocated once the owning isogrid partition
// actually needs polygonising, and is released again once that partition
// goes quiet, mirroring the activation protocol of grid.LazyTracked.
type ChildPoly struct {
	isogrid *grid.Partitioned[float64]
	lookup  *grid.LazyTracked[float64]
	geom    geometry

	size, offset felt.VecDi // plain (un-padded) partition extents
	active       bool
	changed      bool

	// vtxIdx caches, per grid cell and per axis, the index into vtxs of
	// the zero-crossing vertex already computed for the positively
	// directed edge leaving that cell along that axis. The cache is a
	// per-axis tuple, not a per-edge one: edges sharing an axis at
	// different offsets are distinguished by their starting cell, not by
	// a second index.
	vtxIdx *grid.Dense[[]uint32]

	vtxs []Vertex
	spxs []Simplex
}

const nullVtxIdx = ^uint32(0)

// newChildPoly constructs an inactive ChildPoly over isogrid, covering
// the plain partition extents size/offset; the size+2/offset-1 overlap
// is applied lazily on activate.
func newChildPoly(isogrid *grid.Partitioned[float64], size, offset felt.VecDi) *ChildPoly {
	return &ChildPoly{
		isogrid: isogrid,
		geom:    geometryFor(len(isogrid.Size())),
		size:    size.Clone(),
		offset:  offset.Clone(),
	}
}

// IsActive reports whether this ChildPoly currently holds allocated
// vertex/simplex storage.
func (c *ChildPoly) IsActive() bool { return c.active }

// Changed reports whether this partition was activated, marched, or
// deactivated on the Polygoniser's most recent March call — a
// finer-grained sibling to Polygoniser.Changes for callers iterating
// Children directly (see DESIGN.md).
func (c *ChildPoly) Changed() bool { return c.changed }

// activate allocates the vertex-index cache at one cell larger than the
// owning partition on every face. No-op if already active.
func (c *ChildPoly) activate() error {
	if c.active {
		return nil
	}
	d := len(c.size)
	one := make(felt.VecDi, d)
	two := make(felt.VecDi, d)
	for i := 0; i < d; i++ {
		one[i] = 1
		two[i] = 2
	}
	dims := len(c.geom.corners[0])
	leaf := make([]uint32, dims)
	for i := range leaf {
		leaf[i] = nullVtxIdx
	}
	cache, err := grid.NewDense[[]uint32](c.size.Add(two), c.offset.Sub(one), leaf)
	if err != nil {
		return err
	}
	for i := range cache.Data() {
		v := make([]uint32, dims)
		for j := range v {
			v[j] = nullVtxIdx
		}
		cache.SetIdx(i, v)
	}
	c.vtxIdx = cache
	c.active = true
	return nil
}

// deactivate releases the vertex-index cache and vertex/simplex arrays.
func (c *ChildPoly) deactivate() {
	c.vtxIdx = nil
	c.vtxs = nil
	c.spxs = nil
	c.active = false
}

// bind points this ChildPoly at the isogrid child whose narrow-band
// lookup it should march over.
func (c *ChildPoly) bind(child *grid.LazyTracked[float64]) {
	c.lookup = child
}

// Vtxs returns the accumulated vertex array from the last March.
func (c *ChildPoly) Vtxs() []Vertex { return c.vtxs }

// Spxs returns the accumulated simplex array from the last March.
func (c *ChildPoly) Spxs() []Simplex { return c.spxs }

// reset clears the vertex/simplex arrays and the vertex-index cache
// without deallocating the cache's backing storage.
func (c *ChildPoly) reset() {
	c.vtxs = c.vtxs[:0]
	c.spxs = c.spxs[:0]
	for i := range c.vtxIdx.Data() {
		v := c.vtxIdx.GetIdx(i)
		for j := range v {
			v[j] = nullVtxIdx
		}
	}
}

// march rebuilds this (already active) partition's vertices and
// simplices by visiting every cell tracked in any of the bound isogrid
// child's lists — not only the zero layer, since the vertex cache and
// overlap already restrict the walk to cells near the zero-crossing.
func (c *ChildPoly) march() error {
	c.reset()
	if c.lookup == nil || !c.lookup.IsActive() {
		return nil
	}
	for list := 0; list < c.lookup.NumLists(); list++ {
		for _, p := range c.lookup.List(list) {
			if err := c.spx(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// mask builds the 2^D corner inside/outside bitmask at pos: bit i is set
// when the isogrid value at pos+corners[i] is positive, i.e. outside.
func (c *ChildPoly) mask(pos felt.VecDi) (uint16, error) {
	var mask uint16
	for i, corner := range c.geom.corners {
		v, err := c.isogrid.Get(pos.Add(corner))
		if err != nil {
			return 0, err
		}
		if v > 0 {
			mask |= 1 << uint(i)
		}
	}
	return mask, nil
}

// spx generates the simplex(es) for the cube anchored at pos: compute
// the corner mask, look up which edges are crossed and in what order to
// join them, interpolate (or reuse) each
// crossed edge's vertex, then group the vertex order into dims-sized
// chunks to emit one simplex per chunk. Degenerate simplices — every
// vertex collapsing onto a single corner when that corner lies exactly on
// the zero level — are emitted as-is rather than filtered.
func (c *ChildPoly) spx(pos felt.VecDi) error {
	posCalc := pos.Sub(c.geom.gridPosOffset)

	mask, err := c.mask(posCalc)
	if err == felt.ErrOutOfBounds {
		// A band cell flush against the world-grid boundary has cube
		// corners outside the isogrid; its crossing, if any, is owned by
		// the neighbouring in-bounds cube.
		return nil
	}
	if err != nil {
		return err
	}
	vtxMask := c.geom.vtxMask[mask]
	vtxOrder := c.geom.vtxOrder[mask]
	if vtxOrder[0] == -1 {
		return nil
	}

	vtxIdxs := make([]uint32, c.geom.numEdges())
	for edgeIdx, e := range c.geom.edges {
		if (vtxMask>>uint(edgeIdx))&1 == 0 {
			continue
		}
		idx, err := c.idx(posCalc.Add(e.offset), e.axis)
		if err != nil {
			return err
		}
		vtxIdxs[edgeIdx] = idx
	}

	dims := len(posCalc)
	for i := 0; vtxOrder[i] != -1; i += dims {
		idxs := make([]uint32, dims)
		for endpoint := 0; endpoint < dims; endpoint++ {
			idxs[endpoint] = vtxIdxs[vtxOrder[i+endpoint]]
		}
		c.spxs = append(c.spxs, Simplex{Idxs: idxs})
	}
	return nil
}

// idx looks up, or computes then caches, the index into vtxs of the
// zero-crossing vertex along the positively-directed edge leaving posA
// along axis.
func (c *ChildPoly) idx(posA felt.VecDi, axis int) (uint32, error) {
	cached, err := c.vtxIdx.Get(posA)
	if err != nil {
		return 0, err
	}
	if cached[axis] != nullVtxIdx {
		return cached[axis], nil
	}

	posB := posA.Clone()
	posB[axis]++

	valA, err := c.isogrid.Get(posA)
	if err != nil {
		return 0, err
	}
	valB, err := c.isogrid.Get(posB)
	if err != nil {
		return 0, err
	}

	var vtx Vertex
	switch {
	case math.Abs(valA) <= vtxEpsilon:
		vtx.Pos = posA.ToFloat()
	case math.Abs(valB) <= vtxEpsilon:
		vtx.Pos = posB.ToFloat()
	default:
		mu := 0.5
		if math.Abs(valA-valB) > vtxEpsilon {
			mu = valA / (valA - valB)
		}
		vecA := posA.ToFloat()
		vecB := posB.ToFloat()
		vtx.Pos = vecA.Add(vecB.Sub(vecA).Scale(mu))
	}

	if len(posA) == 3 {
		n, err := c.gradient(vtx.Pos)
		if err != nil {
			return 0, err
		}
		vtx.Normal = normalize3(n)
	}

	i := uint32(len(c.vtxs))
	c.vtxs = append(c.vtxs, vtx)
	cached[axis] = i
	return i, nil
}
