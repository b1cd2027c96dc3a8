package poly

import (
	"log/slog"
	"sync"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
	"github.com/feltech/felt/surface"
)

// parallelMinParts is the minimum number of pending partitions before
// March fans out across goroutines; below it the per-goroutine startup
// cost outweighs the marching work.
const parallelMinParts = 4

// Polygoniser marches the zero-level surface of a surface.Surface one
// isogrid partition at a time, binding one ChildPoly per partition.
type Polygoniser struct {
	surface  *surface.Surface
	isogrid  *grid.Partitioned[float64]
	gridSize felt.VecDi
	children []*ChildPoly

	pending map[int]bool
	done    []int

	// Logger receives Debug-level march/activation events, matching
	// surface.Surface's diagnostic logging idiom. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// NewPolygoniser constructs a Polygoniser with one inactive ChildPoly
// per partition of s's isogrid.
func NewPolygoniser(s *surface.Surface) (*Polygoniser, error) {
	isogrid := s.Isogrid()
	n := isogrid.NumChildren()
	childSize := isogrid.ChildSize()
	offset := isogrid.Offset()
	children := make([]*ChildPoly, n)
	for i := 0; i < n; i++ {
		cpos := isogrid.ChildPos(i)
		childOffset := offset.Add(cpos.Mul(childSize))
		cp := newChildPoly(isogrid, childSize, childOffset)
		cp.bind(isogrid.ChildIdx(i))
		children[i] = cp
	}
	return &Polygoniser{
		surface:  s,
		isogrid:  isogrid,
		gridSize: isogrid.GridSize(),
		children: children,
		pending:  make(map[int]bool),
		Logger:   slog.Default(),
	}, nil
}

// Children returns the per-partition polygonisers, in the same linear
// order as surface.Surface.Layer's partitionIdx.
func (p *Polygoniser) Children() []*ChildPoly { return p.children }

// childLinearIndex maps a partition's multi-index to the linear index
// its ChildPoly is stored at, matching the row-major convention
// grid.Partitioned uses to lay out its own children.
func (p *Polygoniser) childLinearIndex(cpos felt.VecDi) int {
	idx := 0
	for i := range cpos {
		idx = idx*p.gridSize[i] + cpos[i]
	}
	return idx
}

// outerLists returns the partition-lookup list indices corresponding to
// the innermost and outermost tracked layers (list 0 and list N−1),
// which is where an isogrid partition activates or deactivates.
func outerLists(nLists int) [2]int { return [2]int{0, nLists - 1} }

// Invalidate marks every currently active partition, plus every
// partition the isogrid's outer layers currently track, for
// re-polygonisation on the next March. Used to force a full rebuild
// after a structural change such as Seed.
func (p *Polygoniser) Invalidate() {
	p.pending = make(map[int]bool)
	for i, c := range p.children {
		if c.IsActive() {
			p.pending[i] = true
		}
	}
	nLists := p.isogrid.NumLists()
	for _, layer := range outerLists(nLists) {
		for _, cpos := range p.isogrid.Children().List(layer) {
			p.pending[p.childLinearIndex(cpos)] = true
		}
	}
}

// Notify scans the surface's delta and status-change grids for
// partitions whose narrow band has moved since the last March, marking
// them (or, for partitions that have gone fully quiet, unmarking them)
// for re-polygonisation. Call this once per
// surface.Surface.Update/UpdateBBox cycle, before March.
func (p *Polygoniser) Notify() {
	nLists := p.surface.DeltaGrid().NumLists()
	outer := outerLists(nLists)

	for _, layer := range outer {
		for _, cpos := range p.surface.DeltaGrid().Children().List(layer) {
			ci := p.childLinearIndex(cpos)
			// Already polygonised, and it's in the delta grid: needs
			// updating. Not yet polygonised, but the isogrid's outer
			// layers still track it: needs polygonising. Neither: no
			// longer needed.
			isActive := p.children[ci].IsActive()
			for _, l2 := range outer {
				if isActive {
					break
				}
				tracked, _ := p.isogrid.Children().IsTrackedIn(cpos, l2)
				isActive = isActive || tracked
			}
			if isActive {
				p.pending[ci] = true
			} else {
				delete(p.pending, ci)
			}
		}
	}

	for _, layer := range outerLists(p.surface.StatusChange().NumLists()) {
		for _, cpos := range p.surface.StatusChange().Children().List(layer) {
			ci := p.childLinearIndex(cpos)
			if p.children[ci].IsActive() {
				p.pending[ci] = true
			}
		}
	}
}

// March re-polygonises every partition marked pending: activating (or
// resetting) and marching it if the owning isogrid partition is active,
// or deactivating it if the isogrid partition has gone inactive.
// Pending partitions march in parallel once there are at
// least parallelMinParts of them — each ChildPoly owns its vertex/simplex
// storage outright and only reads the isogrid, so no coordination beyond
// the final wait is needed. The set of partitions touched is recorded and
// returned by Changes until the next March.
func (p *Polygoniser) March() error {
	for _, ci := range p.done {
		p.children[ci].changed = false
	}
	touched := make([]int, 0, len(p.pending))
	for ci := range p.pending {
		touched = append(touched, ci)
	}

	marchOne := func(ci int) error {
		child := p.children[ci]
		child.changed = true
		if p.isogrid.ChildIdx(ci).IsActive() {
			if err := child.activate(); err != nil {
				return err
			}
			if err := child.march(); err != nil {
				return err
			}
			p.Logger.Debug("poly_partition_marched",
				"partition", ci, "vertices", len(child.Vtxs()), "simplices", len(child.Spxs()))
		} else if child.IsActive() {
			child.deactivate()
			p.Logger.Debug("poly_partition_deactivated", "partition", ci)
		}
		return nil
	}

	if len(touched) < parallelMinParts {
		for _, ci := range touched {
			if err := marchOne(ci); err != nil {
				return err
			}
		}
	} else {
		errs := make([]error, len(touched))
		var wg sync.WaitGroup
		for w, ci := range touched {
			wg.Add(1)
			go func(w, ci int) {
				defer wg.Done()
				errs[w] = marchOne(ci)
			}(w, ci)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
	}

	p.done = touched
	p.pending = make(map[int]bool)
	return nil
}

// Changes returns the partitions touched by the last March call.
func (p *Polygoniser) Changes() []int { return p.done }

// MarchAll invalidates then fully re-polygonises every partition,
// supplementing the incremental Notify/March pair for callers (such as a
// freshly-seeded surface) that have no prior polygonisation to diff
// against.
func (p *Polygoniser) MarchAll() error {
	p.Invalidate()
	return p.March()
}
