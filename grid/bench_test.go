package grid

import (
	"testing"

	"github.com/feltech/felt"
)

// Benchmark the bulk delta-apply with a plain scalar loop
func BenchmarkDeltaApplyScalar(b *testing.B) {
	size := 32 * 32 // typical partition cell count
	delta := make([]float64, size)
	iso := make([]float64, size)

	for i := range delta {
		delta[i] = float64(i) * 0.001
		iso[i] = float64(i) * 0.002
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range iso {
			iso[i] += delta[i]
		}
	}
}

// Benchmark the bulk delta-apply with blas64
func BenchmarkDeltaApplyBLAS(b *testing.B) {
	size := 32 * 32
	delta := make([]float64, size)
	iso := make([]float64, size)

	for i := range delta {
		delta[i] = float64(i) * 0.001
		iso[i] = float64(i) * 0.002
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		BulkAxpy(1, delta, iso)
	}
}

// Benchmark position-addressed dense grid access, the per-cell cost every
// list walk in the surface engine pays
func BenchmarkDenseGetSet(b *testing.B) {
	g, err := NewDense[float64](felt.VecDi{32, 32}, felt.VecDi{-16, -16}, 0)
	if err != nil {
		b.Fatal(err)
	}
	p := felt.VecDi{3, -7}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		v, _ := g.Get(p)
		_ = g.Set(p, v+1)
	}
}

// Benchmark the same access via pre-resolved linear indices, the fast
// path hot loops use once a position has been validated
func BenchmarkDenseGetSetIdx(b *testing.B) {
	g, err := NewDense[float64](felt.VecDi{32, 32}, felt.VecDi{-16, -16}, 0)
	if err != nil {
		b.Fatal(err)
	}
	idx := g.Index(felt.VecDi{3, -7})

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		g.SetIdx(idx, g.GetIdx(idx)+1)
	}
}
