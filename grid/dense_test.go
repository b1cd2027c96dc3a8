package grid

import (
	"testing"

	"github.com/feltech/felt"
)

func TestDenseIndexRoundTrip(t *testing.T) {
	size := felt.VecDi{3, 4, 5}
	offset := felt.VecDi{-1, -2, -3}
	g, err := NewDense[float64](size, offset, 0)
	if err != nil {
		t.Fatal(err)
	}
	for x := offset[0]; x < offset[0]+size[0]; x++ {
		for y := offset[1]; y < offset[1]+size[1]; y++ {
			for z := offset[2]; z < offset[2]+size[2]; z++ {
				p := felt.VecDi{x, y, z}
				idx := g.Index(p)
				got := g.PosAt(idx)
				if !got.Equal(p) {
					t.Fatalf("round trip failed: %v -> %d -> %v", p, idx, got)
				}
			}
		}
	}
}

func TestDenseRowMajorLastAxisFastest(t *testing.T) {
	size := felt.VecDi{2, 3}
	offset := felt.VecDi{0, 0}
	g, err := NewDense[int](size, offset, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Adjacent last-axis coordinates must produce adjacent indices.
	i0 := g.Index(felt.VecDi{0, 0})
	i1 := g.Index(felt.VecDi{0, 1})
	if i1 != i0+1 {
		t.Fatalf("expected last axis to vary fastest, got %d, %d", i0, i1)
	}
	i2 := g.Index(felt.VecDi{1, 0})
	if i2 != i0+3 {
		t.Fatalf("expected first axis stride = size[1] = 3, got %d", i2-i0)
	}
}

func TestDenseGetSetOutOfBounds(t *testing.T) {
	g, err := NewDense[float64](felt.VecDi{2, 2}, felt.VecDi{0, 0}, -1)
	if err != nil {
		t.Fatal(err)
	}
	if v, err := g.Get(felt.VecDi{5, 5}); err == nil {
		t.Fatalf("expected out of bounds error, got value %v", v)
	}
	if err := g.Set(felt.VecDi{5, 5}, 1); err == nil {
		t.Fatal("expected out of bounds error on set")
	}
	if v, err := g.Get(felt.VecDi{0, 0}); err != nil || v != -1 {
		t.Fatalf("expected background -1, got %v, %v", v, err)
	}
}

func TestDenseInvalidDimensions(t *testing.T) {
	if _, err := NewDense[int](felt.VecDi{0, 2}, felt.VecDi{0, 0}, 0); err != felt.ErrInvalidDimensions {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := NewDense[int](felt.VecDi{-1, 2}, felt.VecDi{0, 0}, 0); err != felt.ErrInvalidDimensions {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestDenseSetThenGet(t *testing.T) {
	g, err := NewDense[float64](felt.VecDi{4, 4}, felt.VecDi{0, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	p := felt.VecDi{2, 3}
	if err := g.Set(p, 7.5); err != nil {
		t.Fatal(err)
	}
	v, err := g.Get(p)
	if err != nil || v != 7.5 {
		t.Fatalf("got %v, %v, want 7.5", v, err)
	}
}
