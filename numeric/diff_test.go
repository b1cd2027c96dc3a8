package numeric

import (
	"math"
	"testing"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
)

func TestForwardBackwardCentralDiffOnLinearField(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{20, 20}, felt.VecDi{-10, -10}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// f(x, y) = 2x, so d/dx = 2 everywhere, d/dy = 0.
	for x := -10; x < 10; x++ {
		for y := -10; y < 10; y++ {
			if err := g.Set(felt.VecDi{x, y}, float64(2*x)); err != nil {
				t.Fatal(err)
			}
		}
	}
	p := felt.VecDi{0, 0}
	if v, err := ForwardDiff(g, p, 0, 1); err != nil || math.Abs(v-2) > 1e-9 {
		t.Fatalf("forward diff axis0: %v, %v", v, err)
	}
	if v, err := BackwardDiff(g, p, 0, 1); err != nil || math.Abs(v-2) > 1e-9 {
		t.Fatalf("backward diff axis0: %v, %v", v, err)
	}
	if v, err := CentralDiff(g, p, 0, 1); err != nil || math.Abs(v-2) > 1e-9 {
		t.Fatalf("central diff axis0: %v, %v", v, err)
	}
	if v, err := CentralDiff(g, p, 1, 1); err != nil || math.Abs(v) > 1e-9 {
		t.Fatalf("central diff axis1 should be 0, got %v, %v", v, err)
	}
}

func TestSafeGradientFallsBackAtBoundary(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{4, 4}, felt.VecDi{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if err := g.Set(felt.VecDi{x, y}, float64(x)); err != nil {
				t.Fatal(err)
			}
		}
	}
	grad := SafeGradient(g, felt.VecDi{0, 0}, 1)
	if math.Abs(grad[0]-1) > 1e-9 {
		t.Fatalf("expected forward-diff fallback of 1 at the low boundary, got %v", grad[0])
	}
	grad = SafeGradient(g, felt.VecDi{3, 0}, 1)
	if math.Abs(grad[0]-1) > 1e-9 {
		t.Fatalf("expected backward-diff fallback of 1 at the high boundary, got %v", grad[0])
	}
	grad = SafeGradient(g, felt.VecDi{1, 1}, 1)
	if math.Abs(grad[0]-1) > 1e-9 {
		t.Fatalf("expected central diff of 1 in the interior, got %v", grad[0])
	}
}

func TestUpwindGradientClampsByDirection(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{5, 5}, felt.VecDi{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Monotonically increasing field: f(x) = x.
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			if err := g.Set(felt.VecDi{x, y}, float64(x)); err != nil {
				t.Fatal(err)
			}
		}
	}
	grad, err := UpwindGradient(g, felt.VecDi{2, 2}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(grad[0]-1) > 1e-9 {
		t.Fatalf("expected upwind gradient of 1 for a monotonic ramp, got %v", grad[0])
	}
}

func TestCurvatureOfFlatFieldIsZero(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{5, 5}, felt.VecDi{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Curvature(g, felt.VecDi{2, 2}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("expected zero curvature for a constant field, got %v", v)
	}
}

func TestDivergenceOfConstantFieldIsZero(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{5, 5}, felt.VecDi{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Divergence(g, felt.VecDi{2, 2}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("expected zero divergence for a constant field, got %v", v)
	}
}
