// Package surface implements a narrow-band sparse-field level-set engine:
// an isogrid of signed distances tracked in 2L+1 layer lists, a delta grid
// for staging per-cell speed values between UpdateStart/UpdateEnd, a
// status-change grid recording layer reassignments, and a pair of affected
// grids used by localised updates.
package surface

import (
	"log/slog"
	"math"

	"github.com/feltech/felt"
	"github.com/feltech/felt/config"
	"github.com/feltech/felt/grid"
)

// Surface is a D-dimensional narrow-band sparse-field level-set surface
// with L layers on each side of the zero-crossing.
type Surface struct {
	numLayers int

	isogrid     *grid.Partitioned[float64]
	deltaGrid   *grid.Partitioned[float64]
	statusGrid  *grid.Partitioned[int]
	affected    *grid.Partitioned[struct{}]
	affectedBuf *grid.Partitioned[struct{}]

	// Logger receives Debug-level diagnostic events: reinitialisation
	// convergence counts, outermost-layer flush totals, and raycast
	// hit/miss outcomes. Defaults to slog.Default().
	Logger *slog.Logger

	// Config tunes the raycast walk.
	Config config.RaycastConfig
}

// NewSurface constructs a Surface covering size cells, tiled into
// partitions of partitionSize, tracking numLayers layers on each side of
// the zero-crossing. Offset is −size/2, centring the grid on the origin.
// Returns felt.ErrInvalidDimensions if any component of size or
// partitionSize is non-positive.
func NewSurface(size, partitionSize felt.VecDi, numLayers int) (*Surface, error) {
	d := len(size)
	offset := make(felt.VecDi, d)
	for i := 0; i < d; i++ {
		offset[i] = -(size[i] / 2)
	}
	nLists := 2*numLayers + 1

	isogrid, err := grid.NewPartitioned[float64](size, offset, partitionSize, float64(numLayers+1), nLists)
	if err != nil {
		return nil, err
	}
	deltaGrid, err := grid.NewPartitioned[float64](size, offset, partitionSize, 0, nLists)
	if err != nil {
		return nil, err
	}
	statusGrid, err := grid.NewPartitioned[int](size, offset, partitionSize, 0, nLists)
	if err != nil {
		return nil, err
	}
	affected, err := grid.NewPartitioned[struct{}](size, offset, partitionSize, struct{}{}, nLists)
	if err != nil {
		return nil, err
	}
	affectedBuf, err := grid.NewPartitioned[struct{}](size, offset, partitionSize, struct{}{}, nLists)
	if err != nil {
		return nil, err
	}

	return &Surface{
		numLayers:   numLayers,
		isogrid:     isogrid,
		deltaGrid:   deltaGrid,
		statusGrid:  statusGrid,
		affected:    affected,
		affectedBuf: affectedBuf,
		Logger:      slog.Default(),
		Config:      config.DefaultRaycastConfig(),
	}, nil
}

// NumLayers returns L, the number of tracked layers on each side of the
// zero-crossing.
func (s *Surface) NumLayers() int { return s.numLayers }

// layerID rounds a signed-distance value to its layer ID, biased by
// felt.Epsilon so exact half-values round away from zero.
func (s *Surface) layerID(v float64) int {
	return int(math.Round(v + felt.Epsilon))
}

// layerIdx converts a layer ID to its non-negative list index.
func (s *Surface) layerIdx(id int) int { return id + s.numLayers }

// inBand reports whether id lies within [−L, L].
func (s *Surface) inBand(id int) bool {
	if id < 0 {
		id = -id
	}
	return id <= s.numLayers
}

// Isogrid returns the partitioned signed-distance grid.
func (s *Surface) Isogrid() *grid.Partitioned[float64] { return s.isogrid }

// DeltaGrid returns the partitioned staging grid written by Delta and
// consumed by UpdateEnd.
func (s *Surface) DeltaGrid() *grid.Partitioned[float64] { return s.deltaGrid }

// StatusChange returns the partitioned grid of pending layer
// reassignments.
func (s *Surface) StatusChange() *grid.Partitioned[int] { return s.statusGrid }

// Affected returns the partitioned lookup grid marking cells whose
// distance must be recomputed during a localised update.
func (s *Surface) Affected() *grid.Partitioned[struct{}] { return s.affected }

// Parts returns the number of partitions tiling the isogrid, the
// iteration bound for Layer.
func (s *Surface) Parts() int { return s.isogrid.NumChildren() }

// Layer returns the live position list of cells at layerID within
// partition partitionIdx.
func (s *Surface) Layer(partitionIdx, layerID int) []felt.VecDi {
	return s.isogrid.ChildIdx(partitionIdx).List(s.layerIdx(layerID))
}

// LayerSize returns the total number of cells tracked at layerID across
// every partition.
func (s *Surface) LayerSize(layerID int) int {
	idx := s.layerIdx(layerID)
	n := 0
	for i := 0; i < s.Parts(); i++ {
		n += s.isogrid.ChildIdx(i).ListLen(idx)
	}
	return n
}

// DeltaAt returns the staged delta-grid value at p and whether it has
// been written since the last UpdateStart (a per-cell complement to the
// grid-level accessor DeltaGrid()).
func (s *Surface) DeltaAt(p felt.VecDi) (float64, bool) {
	child, _, err := s.deltaGrid.ChildContaining(p)
	if err != nil || !child.IsActive() {
		return 0, false
	}
	if _, ok, _ := child.IsTracked(p); !ok {
		return 0, false
	}
	v, _ := child.Get(p)
	return v, true
}

// IsBackground reports whether p's isogrid value is outside the tracked
// band.
func (s *Surface) IsBackground(p felt.VecDi) bool {
	v, err := s.isogrid.Get(p)
	if err != nil {
		return true
	}
	return !s.inBand(s.layerID(v))
}

// Bounds returns the inclusive world-space bounding box of the isogrid.
func (s *Surface) Bounds() (lo, hi felt.VecDi) {
	offset := s.isogrid.Offset()
	size := s.isogrid.Size()
	lo = offset
	hi = make(felt.VecDi, len(offset))
	for i := range offset {
		hi[i] = offset[i] + size[i] - 1
	}
	return lo, hi
}

// Seed places a discrete singularity centred at centre: every position p
// within city-block distance numLayers is set to that distance and
// tracked in its layer.
func (s *Surface) Seed(centre felt.VecDi) error {
	d := len(centre)
	lo := make(felt.VecDi, d)
	hi := make(felt.VecDi, d)
	for i := 0; i < d; i++ {
		lo[i] = centre[i] - s.numLayers
		hi[i] = centre[i] + s.numLayers
	}
	return iterateBox(lo, hi, func(p felt.VecDi) error {
		if !s.isogrid.Inside(p) {
			return nil
		}
		dist := p.L1Dist(centre)
		if dist > s.numLayers {
			return nil
		}
		val := float64(dist)
		id := s.layerID(val)
		if !s.inBand(id) {
			return nil
		}
		_, err := s.isogrid.Track(val, p, s.layerIdx(id))
		return err
	})
}

// iterateBox calls fn once for every integer position in the inclusive
// box [lo, hi], axis 0 varying slowest.
func iterateBox(lo, hi felt.VecDi, fn func(p felt.VecDi) error) error {
	d := len(lo)
	p := lo.Clone()
	var rec func(axis int) error
	rec = func(axis int) error {
		if axis == d {
			return fn(p)
		}
		for v := lo[axis]; v <= hi[axis]; v++ {
			p[axis] = v
			if err := rec(axis + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return rec(0)
}
