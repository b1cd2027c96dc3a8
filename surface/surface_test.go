package surface

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
)

func newTestSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := NewSurface(felt.VecDi{9, 9}, felt.VecDi{3, 3}, 2)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func layerSizes(s *Surface) [5]int {
	var sizes [5]int
	for i, id := range []int{-2, -1, 0, 1, 2} {
		sizes[i] = s.LayerSize(id)
	}
	return sizes
}

// TestSeedShape verifies that Seed produces a city-block diamond of the
// expected per-layer sizes.
func TestSeedShape(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}

	v, err := s.isogrid.Get(felt.VecDi{0, 0})
	if err != nil || v != 0 {
		t.Fatalf("isogrid[0,0] = %v, %v; want 0", v, err)
	}
	for _, k := range []int{1, 2} {
		for _, p := range []felt.VecDi{{k, 0}, {-k, 0}, {0, k}, {0, -k}} {
			v, err := s.isogrid.Get(p)
			if err != nil || v != float64(k) {
				t.Fatalf("isogrid[%v] = %v, %v; want %d", p, v, err, k)
			}
		}
	}

	want := [5]int{0, 0, 1, 4, 8}
	if got := layerSizes(s); got != want {
		t.Fatalf("layer sizes = %v, want %v", got, want)
	}
}

// applyZeroLayerConstant stages dv on every currently zero-layer cell, then
// runs UpdateEnd: UpdateStart, Delta(p, dv) for each zero-layer p, UpdateEnd.
func applyZeroLayerConstant(s *Surface, dv float64) error {
	if err := s.UpdateStart(); err != nil {
		return err
	}
	zeroIdx := s.layerIdx(0)
	for i := 0; i < s.Parts(); i++ {
		child := s.isogrid.ChildIdx(i)
		if !child.IsActive() {
			continue
		}
		for _, p := range append([]felt.VecDi(nil), child.List(zeroIdx)...) {
			if err := s.Delta(p, dv); err != nil {
				return err
			}
		}
	}
	return s.UpdateEnd()
}

// TestUpdateEndExpansion grows a seeded diamond by one unit and checks
// the resulting layer sizes and isogrid values, then grows it again and
// checks the radius-2 diamond that results.
func TestUpdateEndExpansion(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}

	want := [5]int{0, 1, 4, 8, 12}
	if got := layerSizes(s); got != want {
		t.Fatalf("layer sizes = %v, want %v", got, want)
	}
	if v, err := s.isogrid.Get(felt.VecDi{0, 0}); err != nil || v != -1 {
		t.Fatalf("isogrid[0,0] = %v, %v; want -1", v, err)
	}
	if v, err := s.isogrid.Get(felt.VecDi{1, 0}); err != nil || v != 0 {
		t.Fatalf("isogrid[1,0] = %v, %v; want 0", v, err)
	}

	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}

	want = [5]int{1, 4, 8, 12, 16}
	if got := layerSizes(s); got != want {
		t.Fatalf("layer sizes after second expansion = %v, want %v", got, want)
	}
	if v, err := s.isogrid.Get(felt.VecDi{0, 0}); err != nil || v != -2 {
		t.Fatalf("isogrid[0,0] = %v, %v; want -2", v, err)
	}
	if v, err := s.isogrid.Get(felt.VecDi{1, 0}); err != nil || v != -1 {
		t.Fatalf("isogrid[1,0] = %v, %v; want -1", v, err)
	}
	if v, err := s.isogrid.Get(felt.VecDi{2, 0}); err != nil || v != 0 {
		t.Fatalf("isogrid[2,0] = %v, %v; want 0", v, err)
	}
}

// TestUpdateEndRoundTrip expands then contracts a seeded diamond by one
// unit and checks the surface returns to its original layer sizes and
// values.
func TestUpdateEndRoundTrip(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, 1); err != nil {
		t.Fatal(err)
	}

	want := [5]int{0, 0, 1, 4, 8}
	if got := layerSizes(s); got != want {
		t.Fatalf("layer sizes = %v, want %v", got, want)
	}
	if v, err := s.isogrid.Get(felt.VecDi{0, 0}); err != nil || v != 0 {
		t.Fatalf("isogrid[0,0] = %v, %v; want 0", v, err)
	}
}

// TestUpdateEndFullCollapse repeatedly contracts a seeded diamond until
// the surface vanishes and every cell reads background.
func TestUpdateEndFullCollapse(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 11; i++ {
		if err := applyZeroLayerConstant(s, 1); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}

	for id := -2; id <= 2; id++ {
		if n := s.LayerSize(id); n != 0 {
			t.Fatalf("layer %d has %d tracked cells, want 0", id, n)
		}
	}
	lo, hi := s.Bounds()
	err := iterateBox(lo, hi, func(p felt.VecDi) error {
		v, err := s.isogrid.Get(p)
		if err != nil {
			return err
		}
		if v != 3 {
			t.Fatalf("isogrid[%v] = %v, want 3", p, v)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

// TestSymmetricTwoSeedExpansion checks that two seeds expanded by one
// unit stay symmetric about the y axis, with the expanding fronts'
// leading tips in the partitions straddling it.
func TestSymmetricTwoSeedExpansion(t *testing.T) {
	s, err := NewSurface(felt.VecDi{16, 9}, felt.VecDi{4, 3}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(felt.VecDi{-4, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(felt.VecDi{4, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}

	// The two partitions straddling the y axis each hold exactly 3 cells
	// of the outermost layer: the expanding fronts' leading tips.
	for _, cpos := range []felt.VecDi{{1, 1}, {2, 1}} {
		idx := cpos[0]*3 + cpos[1]
		if got := len(s.Layer(idx, 2)); got != 3 {
			t.Fatalf("central partition %v holds %d outermost-layer cells, want 3", cpos, got)
		}
	}

	lo, hi := s.Bounds()
	if err := iterateBox(lo, hi, func(p felt.VecDi) error {
		mirror := felt.VecDi{-p[0], p[1]}
		if !s.isogrid.Inside(mirror) {
			return nil
		}
		v, err := s.isogrid.Get(p)
		if err != nil {
			return err
		}
		vm, err := s.isogrid.Get(mirror)
		if err != nil {
			return err
		}
		if v != vm {
			t.Fatalf("isogrid[%v]=%v != isogrid[%v]=%v (expected y-axis symmetry)", p, v, mirror, vm)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

// TestLayerValueAgreement checks that after UpdateEnd, every tracked
// cell's layer index matches round(isogrid value).
func TestLayerValueAgreement(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}

	for id := -2; id <= 2; id++ {
		for i := 0; i < s.Parts(); i++ {
			for _, p := range s.Layer(i, id) {
				v, err := s.isogrid.Get(p)
				if err != nil {
					t.Fatal(err)
				}
				if got := s.layerID(v); got != id {
					t.Fatalf("cell %v tracked at layer %d but layerID(%v) = %d", p, id, v, got)
				}
			}
		}
	}
}

// TestNarrowBandClosure checks that after an update the band has no
// holes: every outermost-layer cell touches the next layer inward, and
// no cell short of the outermost layer touches untracked background.
func TestNarrowBandClosure(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}

	neighbourLayers := func(p felt.VecDi) (ids []int, inGrid int) {
		for axis := 0; axis < len(p); axis++ {
			for _, delta := range [2]int{-1, 1} {
				q := p.AddAxis(axis, delta)
				if !s.isogrid.Inside(q) {
					continue
				}
				inGrid++
				v, err := s.isogrid.Get(q)
				if err != nil {
					t.Fatal(err)
				}
				ids = append(ids, s.layerID(v))
			}
		}
		return ids, inGrid
	}

	L := s.NumLayers()
	for _, sign := range []int{-1, 1} {
		for i := 0; i < s.Parts(); i++ {
			for _, p := range s.Layer(i, sign*L) {
				ids, _ := neighbourLayers(p)
				found := false
				for _, id := range ids {
					if id == sign*(L-1) || id == 0 {
						found = true
					}
				}
				if !found {
					t.Fatalf("outermost cell %v has no neighbour at layer %d or 0", p, sign*(L-1))
				}
			}
			for _, p := range s.Layer(i, sign*(L-1)) {
				ids, _ := neighbourLayers(p)
				for _, id := range ids {
					if id < -L || id > L {
						t.Fatalf("layer-%d cell %v touches untracked background (neighbour layer %d)", sign*(L-1), p, id)
					}
				}
			}
		}
	}
}

// TestCityBlockDistanceFixedPoint checks that every tracked cell's
// city-block-reinitialised value is already a fixed point of the
// reinitialisation step.
func TestCityBlockDistanceFixedPoint(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}

	for id := -2; id <= 2; id++ {
		if id == 0 {
			continue
		}
		sign := 1.0
		if id < 0 {
			sign = -1.0
		}
		for i := 0; i < s.Parts(); i++ {
			for _, p := range s.Layer(i, id) {
				v, err := s.isogrid.Get(p)
				if err != nil {
					t.Fatal(err)
				}
				best := v * sign
				for axis := 0; axis < len(p); axis++ {
					for _, delta := range [2]int{-1, 1} {
						q := p.AddAxis(axis, delta)
						if !s.isogrid.Inside(q) {
							continue
						}
						qv, err := s.isogrid.Get(q)
						if err != nil {
							t.Fatal(err)
						}
						if qv*sign < best {
							best = qv * sign
						}
					}
				}
				if best != v*sign {
					t.Fatalf("cell %v (v=%v) not a fixed point of city-block reinitialisation: min neighbour %v*sign, self %v*sign", p, v, best, v*sign)
				}
			}
		}
	}
}

func TestDeltaRejectsLargeMagnitude(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delta(felt.VecDi{0, 0}, 1.6); err != felt.ErrInvalidDelta {
		t.Fatalf("got %v, want felt.ErrInvalidDelta", err)
	}
}

// TestUpdateEndLocalMatchesFull applies the same staged deltas to two
// identically-seeded surfaces, one via the full reinitialisation and one
// via the affected-set-localised variant, and checks the resulting
// isogrids agree cell for cell.
func TestUpdateEndLocalMatchesFull(t *testing.T) {
	full := newTestSurface(t)
	local := newTestSurface(t)
	for _, s := range []*Surface{full, local} {
		if err := s.Seed(felt.VecDi{0, 0}); err != nil {
			t.Fatal(err)
		}
	}

	stage := func(s *Surface) error {
		if err := s.UpdateStart(); err != nil {
			return err
		}
		zeroIdx := s.layerIdx(0)
		for i := 0; i < s.Parts(); i++ {
			for _, p := range append([]felt.VecDi(nil), s.isogrid.ChildIdx(i).List(zeroIdx)...) {
				if err := s.Delta(p, -1); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := stage(full); err != nil {
		t.Fatal(err)
	}
	if err := full.UpdateEnd(); err != nil {
		t.Fatal(err)
	}
	if err := stage(local); err != nil {
		t.Fatal(err)
	}
	if err := local.UpdateEndLocal(); err != nil {
		t.Fatal(err)
	}

	if got, want := layerSizes(local), layerSizes(full); got != want {
		t.Fatalf("localised layer sizes = %v, full = %v", got, want)
	}
	lo, hi := full.Bounds()
	if err := iterateBox(lo, hi, func(p felt.VecDi) error {
		vf, err := full.isogrid.Get(p)
		if err != nil {
			return err
		}
		vl, err := local.isogrid.Get(p)
		if err != nil {
			return err
		}
		if vf != vl {
			t.Fatalf("isogrid[%v]: full=%v localised=%v", p, vf, vl)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

// TestUpdateBBoxRestrictsToBox shrinks only the half of a two-seed
// surface inside the box and checks the other seed is untouched.
func TestUpdateBBoxRestrictsToBox(t *testing.T) {
	s, err := NewSurface(felt.VecDi{16, 9}, felt.VecDi{4, 3}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(felt.VecDi{-4, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(felt.VecDi{4, 0}); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateBBox(felt.VecDi{0, -4}, felt.VecDi{7, 4},
		func(felt.VecDi, *grid.Partitioned[float64]) float64 { return -1 }); err != nil {
		t.Fatal(err)
	}

	// The right-hand seed expanded: its centre is now one layer deeper.
	if v, err := s.isogrid.Get(felt.VecDi{4, 0}); err != nil || v != -1 {
		t.Fatalf("isogrid[4,0] = %v, %v; want -1", v, err)
	}
	// The left-hand seed, outside the box, is still a fresh singularity.
	if v, err := s.isogrid.Get(felt.VecDi{-4, 0}); err != nil || v != 0 {
		t.Fatalf("isogrid[-4,0] = %v, %v; want 0", v, err)
	}
}

// TestDebugLoggingEmitsDiagnosticEvents captures the surface's Debug-level
// log stream across an update cycle and a raycast, checking the
// convergence and miss events land with their expected attributes.
func TestDebugLoggingEmitsDiagnosticEvents(t *testing.T) {
	s := newTestSurface(t)
	var buf bytes.Buffer
	s.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := applyZeroLayerConstant(s, -1); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "reinitialise_converged") {
		t.Fatalf("no reinitialise_converged event in log output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "mode=full") {
		t.Fatalf("convergence event missing mode attribute:\n%s", buf.String())
	}

	buf.Reset()
	if hit := s.Ray(felt.VecDf{-10, 0}, felt.VecDf{0, 1}); !hit.IsNull() {
		t.Fatalf("expected miss, got %v", hit)
	}
	if !strings.Contains(buf.String(), "raycast_miss") {
		t.Fatalf("no raycast_miss event in log output:\n%s", buf.String())
	}
}

func TestUpdateConvenienceMatchesManualCycle(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(func(felt.VecDi, *grid.Partitioned[float64]) float64 { return -1 }); err != nil {
		t.Fatal(err)
	}
	want := [5]int{0, 1, 4, 8, 12}
	if got := layerSizes(s); got != want {
		t.Fatalf("layer sizes = %v, want %v", got, want)
	}
}
