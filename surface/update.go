package surface

import (
	"sync"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
)

// parallelMinParts is the minimum number of active zero-layer partitions
// before Update/UpdateBBox fan staging out across goroutines; below it the
// per-goroutine startup cost outweighs the work, so staging runs serially.
const parallelMinParts = 4

// resetAll clears every list of a partitioned grid, deactivating any
// partition left with no tracked cells.
func resetAll[T any](pg *grid.Partitioned[T]) error {
	for k := 0; k < pg.NumLists(); k++ {
		if err := pg.Reset(k); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStart clears the delta, affected (both buffers), and
// status-change grids, readying the surface for a new round of staged
// deltas.
func (s *Surface) UpdateStart() error {
	if err := resetAll(s.deltaGrid); err != nil {
		return err
	}
	if err := resetAll(s.affected); err != nil {
		return err
	}
	if err := resetAll(s.affectedBuf); err != nil {
		return err
	}
	return resetAll(s.statusGrid)
}

// Delta stages dv as the new zero-layer delta-grid value at p. Fails
// with felt.ErrInvalidDelta if |round(dv)| > 1.
func (s *Surface) Delta(p felt.VecDi, dv float64) error {
	if err := felt.CheckDelta(dv); err != nil {
		return err
	}
	_, err := s.deltaGrid.Track(dv, p, 0)
	return err
}

// applyZeroLayerDelta is step 1 of UpdateEnd: apply every staged
// zero-layer delta to the isogrid, recording a status change (and
// affected-buffer membership, if still in band) for any cell that left
// the zero layer.
func (s *Surface) applyZeroLayerDelta() error {
	parts := append([]felt.VecDi(nil), s.deltaGrid.Children().List(0)...)
	for _, cpos := range parts {
		deltaChild := s.deltaGrid.ChildAt(cpos)
		isoChild := s.isogrid.ChildAt(cpos)

		// Bulk-apply fast path: the delta child's background is 0 for
		// every cell not staged in list 0, so adding its whole
		// contiguous array into the isogrid child's whole contiguous
		// array in one BLAS call is exactly equivalent to adding the
		// staged delta at each tracked cell individually (see
		// grid.BulkAxpy). Falls back to the scalar per-cell add only if
		// the shapes don't line up (e.g. the isogrid child is
		// unexpectedly inactive, a programmer-error precondition
		// violation rather than a normal code path).
		if !grid.BulkAxpy(1, deltaChild.Data(), isoChild.Data()) {
			cells := append([]felt.VecDi(nil), deltaChild.List(0)...)
			for _, p := range cells {
				dv, err := deltaChild.Get(p)
				if err != nil {
					return err
				}
				v0, err := s.isogrid.Get(p)
				if err != nil {
					return err
				}
				if err := s.isogrid.Set(p, v0+dv); err != nil {
					return err
				}
			}
		}

		cells := append([]felt.VecDi(nil), deltaChild.List(0)...)
		for _, p := range cells {
			vNew, err := s.isogrid.Get(p)
			if err != nil {
				return err
			}
			id := s.layerID(vNew)
			if id == 0 {
				continue
			}
			if _, err := s.statusGrid.Track(id, p, s.layerIdx(0)); err != nil {
				return err
			}
			if s.inBand(id) {
				if _, err := s.affectedBuf.Track(struct{}{}, p, s.layerIdx(id)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// nextClosest finds the cardinal neighbour of p whose isogrid value,
// multiplied by side, is minimal — the neighbour toward the zero-curve on
// p's own side of the band. Ties keep the first candidate found, i.e. axis
// iteration order. If p is itself on the zero layer, nextClosest(p) = p.
func (s *Surface) nextClosest(p felt.VecDi, side int) (felt.VecDi, error) {
	v0, err := s.isogrid.Get(p)
	if err != nil {
		return nil, err
	}
	if s.layerID(v0) == 0 {
		return p, nil
	}
	sideF := float64(side)
	best := p
	bestVal := v0 * sideF
	for axis := 0; axis < len(p); axis++ {
		for _, delta := range [2]int{-1, 1} {
			q := p.AddAxis(axis, delta)
			v, err := s.isogrid.Get(q)
			if err != nil {
				continue // neighbour lies outside the world grid
			}
			val := v * sideF
			if val < bestVal {
				bestVal = val
				best = q
			}
		}
	}
	return best, nil
}

// distance computes the reinitialised signed distance at p on the given
// side.
func (s *Surface) distance(p felt.VecDi, side int) (float64, error) {
	q, err := s.nextClosest(p, side)
	if err != nil {
		return 0, err
	}
	v, err := s.isogrid.Get(q)
	if err != nil {
		return 0, err
	}
	return v + float64(side), nil
}

// reinitialiseRound performs one reinitialisation pass of UpdateEnd: for
// id = -1..-L then +1..+L, recompute distance(p, side) for every cell
// currently tracked at layer id (read from the isogrid's own tracked
// lists if fromIsogrid, otherwise from the affected grid), write the new
// value, and record a status change (plus affected-buffer membership)
// for any cell whose layer ID changed. Distances are computed in a full
// read pass before any writes, so a neighbour's distance() read never
// observes a value already rewritten this round; a plain local slice
// holds the staged writes for that pass (see DESIGN.md).
func (s *Surface) reinitialiseRound(fromIsogrid bool) (bool, error) {
	type staged struct {
		p felt.VecDi
		d float64
	}
	changed := false
	for _, side := range [2]int{-1, 1} {
		for step := 1; step <= s.numLayers; step++ {
			id := side * step
			listIdx := s.layerIdx(id)

			var cells []felt.VecDi
			var source *grid.Partitioned[struct{}]
			if fromIsogrid {
				parts := append([]felt.VecDi(nil), s.isogrid.Children().List(listIdx)...)
				for _, cpos := range parts {
					cells = append(cells, s.isogrid.ChildAt(cpos).List(listIdx)...)
				}
			} else {
				source = s.affected
				parts := append([]felt.VecDi(nil), source.Children().List(listIdx)...)
				for _, cpos := range parts {
					cells = append(cells, source.ChildAt(cpos).List(listIdx)...)
				}
			}

			staging := make([]staged, 0, len(cells))
			for _, p := range cells {
				d, err := s.distance(p, side)
				if err != nil {
					return false, err
				}
				staging = append(staging, staged{p, d})
			}
			for _, st := range staging {
				if err := s.isogrid.Set(st.p, st.d); err != nil {
					return false, err
				}
				newID := s.layerID(st.d)
				if newID == id {
					continue
				}
				changed = true
				if _, err := s.statusGrid.Track(newID, st.p, listIdx); err != nil {
					return false, err
				}
				if s.inBand(newID) {
					if _, err := s.affectedBuf.Track(struct{}{}, st.p, s.layerIdx(newID)); err != nil {
						return false, err
					}
				}
			}
		}
	}
	return changed, nil
}

// swapAffected exchanges the affected and affected-buffer grids, then
// clears the new buffer ready to accumulate the next round's changes.
func (s *Surface) swapAffected() error {
	s.affected, s.affectedBuf = s.affectedBuf, s.affected
	return resetAll(s.affectedBuf)
}

// reinitialiseFull runs reinitialisation to convergence, sourcing the
// first pass from the isogrid's own layer lists (full, non-localised
// update_end).
func (s *Surface) reinitialiseFull() error {
	rounds := 1
	changed, err := s.reinitialiseRound(true)
	if err != nil {
		return err
	}
	for changed {
		if err := s.swapAffected(); err != nil {
			return err
		}
		rounds++
		changed, err = s.reinitialiseRound(false)
		if err != nil {
			return err
		}
	}
	s.Logger.Debug("reinitialise_converged", "mode", "full", "rounds", rounds)
	return nil
}

// reinitialiseLocal runs reinitialisation to convergence, sourcing every
// pass from the affected grid built by buildAffectedSet.
func (s *Surface) reinitialiseLocal() error {
	rounds := 1
	changed, err := s.reinitialiseRound(false)
	if err != nil {
		return err
	}
	for changed {
		if err := s.swapAffected(); err != nil {
			return err
		}
		rounds++
		changed, err = s.reinitialiseRound(false)
		if err != nil {
			return err
		}
	}
	s.Logger.Debug("reinitialise_converged", "mode", "local", "rounds", rounds)
	return nil
}

// buildAffectedSet marks every zero-layer cell touched by the delta grid,
// then in numLayers breadth-first sweeps adds in-band cardinal
// neighbours, de-duplicated by a visited set rather than a per-cell flag
// bit on a scratch grid.
func (s *Surface) buildAffectedSet() error {
	visited := make(map[string]bool)
	mark := func(p felt.VecDi) error {
		v, err := s.isogrid.Get(p)
		if err != nil {
			return err
		}
		id := s.layerID(v)
		if !s.inBand(id) {
			return nil
		}
		_, err = s.affected.Track(struct{}{}, p, s.layerIdx(id))
		return err
	}

	var frontier []felt.VecDi
	parts := append([]felt.VecDi(nil), s.deltaGrid.Children().List(0)...)
	for _, cpos := range parts {
		for _, p := range s.deltaGrid.ChildAt(cpos).List(0) {
			key := p.String()
			if visited[key] {
				continue
			}
			visited[key] = true
			frontier = append(frontier, p)
			if err := mark(p); err != nil {
				return err
			}
		}
	}

	for sweep := 0; sweep < s.numLayers; sweep++ {
		var next []felt.VecDi
		for _, p := range frontier {
			for axis := 0; axis < len(p); axis++ {
				for _, delta := range [2]int{-1, 1} {
					q := p.AddAxis(axis, delta)
					if !s.isogrid.Inside(q) {
						continue
					}
					key := q.String()
					if visited[key] {
						continue
					}
					visited[key] = true
					v, err := s.isogrid.Get(q)
					if err != nil {
						return err
					}
					if !s.inBand(s.layerID(v)) {
						continue
					}
					next = append(next, q)
					if err := mark(q); err != nil {
						return err
					}
				}
			}
		}
		frontier = next
	}
	return nil
}

// layerMove executes an isogrid layer reassignment from one tracked list
// to another, or to/from the untracked background.
func (s *Surface) layerMove(p felt.VecDi, from, to int) error {
	fromIn := s.inBand(from)
	toIn := s.inBand(to)
	if err := felt.CheckLayerMove(fromIn, toIn); err != nil {
		return err
	}
	switch {
	case fromIn && toIn:
		return s.isogrid.Retrack(p, s.layerIdx(from), s.layerIdx(to))
	case fromIn:
		if err := s.isogrid.Untrack(p, s.layerIdx(from)); err != nil {
			return err
		}
		far := float64(s.numLayers + 1)
		if to < 0 {
			far = -far
		}
		// If untracking emptied the child it is now deactivated, and
		// writing a side-matched sentinel is moot: an inactive cell
		// reads the isogrid's single +(L+1) background regardless of
		// which side it left the band on.
		if err := s.isogrid.Set(p, far); err != nil && err != felt.ErrInactiveGrid {
			return err
		}
		return nil
	default:
		v, err := s.isogrid.Get(p)
		if err != nil {
			return err
		}
		_, err = s.isogrid.Track(v, p, s.layerIdx(to))
		return err
	}
}

// flushStatusChanges is step 6 of update_end: execute layer_move for
// every pending status change, returning the outermost-layer cells that
// stepped one layer inward toward the zero curve — the band's leading
// edge, behind which expandOuterLayers must grow new outermost cells.
func (s *Surface) flushStatusChanges() (fromInner, fromOuter []felt.VecDi, err error) {
	for idFrom := -s.numLayers; idFrom <= s.numLayers; idFrom++ {
		listIdx := s.layerIdx(idFrom)
		parts := append([]felt.VecDi(nil), s.statusGrid.Children().List(listIdx)...)
		for _, cpos := range parts {
			child := s.statusGrid.ChildAt(cpos)
			cells := append([]felt.VecDi(nil), child.List(listIdx)...)
			for _, p := range cells {
				idTo, gerr := child.Get(p)
				if gerr != nil {
					return nil, nil, gerr
				}
				if merr := s.layerMove(p, idFrom, idTo); merr != nil {
					return nil, nil, merr
				}
				switch {
				case idFrom == -s.numLayers && idTo == -(s.numLayers - 1):
					fromInner = append(fromInner, p)
				case idFrom == s.numLayers && idTo == s.numLayers-1:
					fromOuter = append(fromOuter, p)
				}
			}
		}
	}
	return fromInner, fromOuter, nil
}

// expandOuterLayers is step 7 of update_end: for every outermost-layer
// cell that stepped inward, any cardinal neighbour still outside the band
// lies exactly one unit beyond the vacated layer; its distance is
// computed and it is tracked (not merely written) into the isogrid at
// layer ±L. Duplicate tracking is silently absorbed by Track's
// already-tracked check. This runs serially: a neighbour may live in an
// adjacent partition, so the walk is not safe to fan out by partition.
func (s *Surface) expandOuterLayers(fromInner, fromOuter []felt.VecDi) error {
	expand := func(cells []felt.VecDi, side int) error {
		for _, p := range cells {
			for axis := 0; axis < len(p); axis++ {
				for _, delta := range [2]int{-1, 1} {
					q := p.AddAxis(axis, delta)
					if !s.isogrid.Inside(q) {
						continue
					}
					if !s.IsBackground(q) {
						continue
					}
					d, err := s.distance(q, side)
					if err != nil {
						return err
					}
					if _, err := s.isogrid.Track(d, q, s.layerIdx(side*s.numLayers)); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if err := expand(fromInner, -1); err != nil {
		return err
	}
	return expand(fromOuter, 1)
}

// UpdateEnd applies every staged delta, reinitialises the full narrow
// band to convergence, flushes layer reassignments, and expands the
// outermost layers if the surface has moved.
func (s *Surface) UpdateEnd() error {
	if err := s.applyZeroLayerDelta(); err != nil {
		return err
	}
	if err := s.reinitialiseFull(); err != nil {
		return err
	}
	fromInner, fromOuter, err := s.flushStatusChanges()
	if err != nil {
		return err
	}
	s.Logger.Debug("update_end_flushed",
		"expand_inner", len(fromInner), "expand_outer", len(fromOuter))
	return s.expandOuterLayers(fromInner, fromOuter)
}

// UpdateEndLocal is UpdateEnd restricted to the affected set built from
// cells touched by the staged deltas. The affected set is built before
// the deltas are applied, so each delta-touched cell is filed under the
// zero layer it still occupies — the reinitialisation loops skip the
// zero-layer list, leaving those cells to the status-change flush just
// as in the full update.
func (s *Surface) UpdateEndLocal() error {
	if err := s.buildAffectedSet(); err != nil {
		return err
	}
	if err := s.applyZeroLayerDelta(); err != nil {
		return err
	}
	if err := s.reinitialiseLocal(); err != nil {
		return err
	}
	fromInner, fromOuter, err := s.flushStatusChanges()
	if err != nil {
		return err
	}
	return s.expandOuterLayers(fromInner, fromOuter)
}

// stageZeroLayer invokes f on every zero-layer cell accepted by filter and
// stages its return value as that cell's delta. Staging fans out one
// goroutine per active zero-layer partition once there are at least
// parallelMinParts of them: each goroutine only writes the delta-grid
// partition matching its own isogrid partition, and the delta grid's
// shared partition-level lookup is mutex-guarded, so the fan-out needs no
// further coordination.
func (s *Surface) stageZeroLayer(filter func(p felt.VecDi) bool, f func(p felt.VecDi, iso *grid.Partitioned[float64]) float64) error {
	zeroIdx := s.layerIdx(0)
	var parts []int
	for i := 0; i < s.Parts(); i++ {
		if s.isogrid.ChildIdx(i).ListLen(zeroIdx) > 0 {
			parts = append(parts, i)
		}
	}

	stagePart := func(i int) error {
		child := s.isogrid.ChildIdx(i)
		for _, p := range child.List(zeroIdx) {
			if filter != nil && !filter(p) {
				continue
			}
			if err := s.Delta(p, f(p, s.isogrid)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(parts) < parallelMinParts {
		for _, i := range parts {
			if err := stagePart(i); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(parts))
	var wg sync.WaitGroup
	for w, i := range parts {
		wg.Add(1)
		go func(w, i int) {
			defer wg.Done()
			errs[w] = stagePart(i)
		}(w, i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Update is an UpdateStart/stage/UpdateEnd convenience: f is invoked once
// per zero-layer cell with its position and the isogrid, and its return
// value is staged as that cell's delta. Staging runs in parallel across
// zero-layer partitions; f must therefore be a pure function of position
// and isogrid.
func (s *Surface) Update(f func(p felt.VecDi, iso *grid.Partitioned[float64]) float64) error {
	if err := s.UpdateStart(); err != nil {
		return err
	}
	if err := s.stageZeroLayer(nil, f); err != nil {
		return err
	}
	return s.UpdateEnd()
}

// UpdateBBox is Update restricted to zero-layer cells whose position
// lies within the inclusive box [lo, hi].
func (s *Surface) UpdateBBox(lo, hi felt.VecDi, f func(p felt.VecDi, iso *grid.Partitioned[float64]) float64) error {
	if err := s.UpdateStart(); err != nil {
		return err
	}
	filter := func(p felt.VecDi) bool { return inBoxInclusive(p, lo, hi) }
	if err := s.stageZeroLayer(filter, f); err != nil {
		return err
	}
	return s.UpdateEnd()
}

func inBoxInclusive(p, lo, hi felt.VecDi) bool {
	for i := range p {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}
