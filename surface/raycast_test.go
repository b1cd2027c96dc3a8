package surface

import (
	"math"
	"testing"

	"github.com/feltech/felt"
)

func TestRayHitsExpandedSurfaceAlongAxis(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	// Expand the seed twice so the zero layer sits at city-block radius 2
	// with a well-defined gradient, then shoot along +x from well outside
	// the grid and expect a hit near the left crossing at (-2, 0).
	for i := 0; i < 2; i++ {
		if err := applyZeroLayerConstant(s, -1); err != nil {
			t.Fatal(err)
		}
	}
	hit := s.Ray(felt.VecDf{-10, 0}, felt.VecDf{1, 0})
	if hit.IsNull() {
		t.Fatal("expected a hit, got miss")
	}
	if math.Abs(hit[0]+2) > 0.5 || math.Abs(hit[1]) > 0.5 {
		t.Fatalf("hit %v not close to expected crossing near (-2,0)", hit)
	}
}

func TestRayMissesWhenAimedAway(t *testing.T) {
	s := newTestSurface(t)
	if err := s.Seed(felt.VecDi{0, 0}); err != nil {
		t.Fatal(err)
	}
	hit := s.Ray(felt.VecDf{-10, 0}, felt.VecDf{0, 1})
	if !hit.IsNull() {
		t.Fatalf("expected miss, got hit %v", hit)
	}
}

func TestRayMissesEmptyGrid(t *testing.T) {
	s := newTestSurface(t)
	hit := s.Ray(felt.VecDf{-10, 0}, felt.VecDf{1, 0})
	if !hit.IsNull() {
		t.Fatalf("expected miss on an unseeded surface, got %v", hit)
	}
}
