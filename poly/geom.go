// Package poly implements a marching-squares/marching-cubes polygoniser:
// one Single polygoniser per isogrid partition, overlapping its
// neighbours by one cell, sharing the isogrid's edge-crossing lookup
// tables across 2D and 3D.
package poly

import "github.com/feltech/felt"

// edge pairs a corner offset with the axis it runs along, locating one
// side of a marching cube that may be crossed by the zero-level surface.
type edge struct {
	offset felt.VecDi
	axis   int
}

// geometry bundles the per-dimension marching-squares/cubes tables: the
// 2^D corner offsets in a fixed winding order, the edges matching them,
// the corner-mask-to-edge-mask table, the corner-mask-to-vertex-ordering
// table (each row grouped in chunks of dims to form simplices, -1
// terminated), and the position offset compensating for the table's
// marching direction.
type geometry struct {
	dims          int
	corners       []felt.VecDi
	edges         []edge
	vtxMask       []uint16
	vtxOrder      [][]int8
	gridPosOffset felt.VecDi
}

// geometryFor returns the lookup tables for a D-dimensional isogrid. Only
// 2 and 3 dimensions are supported, using hand-derived (2D) and standard
// Lorensen-Cline (3D) tables.
func geometryFor(dims int) geometry {
	switch dims {
	case 2:
		return geometry2D
	case 3:
		return geometry3D
	default:
		panic("poly: unsupported dimension")
	}
}

// numEdges is len(g.edges), the fixed per-cube edge count the vtx_mask
// bitmask and per-cell vertex cache are sized to.
func (g geometry) numEdges() int { return len(g.edges) }
