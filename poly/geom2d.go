package poly

import "github.com/feltech/felt"

// geometry2D is the marching-squares table: 4 corners in CCW order
// starting at (0,0), 4 candidate edges, a 16-entry corner-mask-to-edge-mask
// table, and a 16x4 vertex-ordering table.
var geometry2D = geometry{
	dims: 2,
	corners: []felt.VecDi{
		{0, 0},
		{1, 0},
		{1, 1},
		{0, 1},
	},
	edges: []edge{
		{felt.VecDi{0, 0}, 0},
		{felt.VecDi{1, 0}, 1},
		{felt.VecDi{0, 1}, 0},
		{felt.VecDi{0, 0}, 1},
	},
	gridPosOffset: felt.VecDi{0, 0},
	vtxMask: []uint16{
		0b0000,
		0b1001,
		0b0011,
		0b1010,
		0b0110,
		0b1111,
		0b0101,
		0b1100,
		0b1100,
		0b0101,
		0b1111,
		0b0110,
		0b1010,
		0b0011,
		0b1001,
		0b0000,
	},
	vtxOrder: [][]int8{
		{-1, -1, -1, -1},
		{3, 0, -1, -1},
		{0, 1, -1, -1},
		{3, 1, -1, -1},
		{1, 2, -1, -1},
		{3, 0, 1, 2},
		{0, 2, -1, -1},
		{3, 2, -1, -1},
		{2, 3, -1, -1},
		{2, 0, -1, -1},
		{2, 1, 0, 3},
		{2, 1, -1, -1},
		{3, 1, -1, -1},
		{1, 0, -1, -1},
		{0, 3, -1, -1},
		{-1, -1, -1, -1},
	},
}
