package numeric

import (
	"math"
	"testing"

	"github.com/feltech/felt"
	"github.com/feltech/felt/grid"
)

func TestLerpBilinearMidpoint(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{4, 4}, felt.VecDi{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	corners := map[[2]int]float64{
		{0, 0}: 0, {1, 0}: 2, {0, 1}: 4, {1, 1}: 6,
	}
	for c, v := range corners {
		if err := g.Set(felt.VecDi{c[0], c[1]}, v); err != nil {
			t.Fatal(err)
		}
	}
	v, err := Lerp(g, felt.VecDf{0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	want := (0.0 + 2 + 4 + 6) / 4
	if math.Abs(v-want) > 1e-9 {
		t.Fatalf("got %v, want %v", v, want)
	}
}

func TestLerpAtExactGridPointReturnsExactValue(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{4, 4}, felt.VecDi{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Set(felt.VecDi{2, 1}, 3.25); err != nil {
		t.Fatal(err)
	}
	v, err := Lerp(g, felt.VecDf{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if v != 3.25 {
		t.Fatalf("got %v, want 3.25", v)
	}
}

func TestLerpTrilinear3D(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{2, 2, 2}, felt.VecDi{0, 0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				if err := g.Set(felt.VecDi{x, y, z}, float64(x+y+z)); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	v, err := Lerp(g, felt.VecDf{0.5, 0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(v-1.5) > 1e-9 {
		t.Fatalf("got %v, want 1.5", v)
	}
}

func TestLerpOutOfBoundsErrors(t *testing.T) {
	g, err := grid.NewDense[float64](felt.VecDi{2, 2}, felt.VecDi{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Lerp(g, felt.VecDf{5, 5}); err != felt.ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}
