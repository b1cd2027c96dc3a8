package grid

import "gonum.org/v1/gonum/blas/blas64"

// BulkAxpy adds alpha*src into dst element-wise over two same-length
// float64 slices, using BLAS level-1 Axpy rather than a scalar Go loop
// (grounded on systems/simd_bench_test.go's BenchmarkFlowBlendBLAS
// pattern, adapted from blas32/float32 to blas64/float64 since the
// isogrid and delta grid are float64 throughout). Returns false if the
// slices' lengths differ, doing nothing in that case.
//
// This is the bulk-apply fast path for a densely-populated narrow band:
// a partition's delta-grid values default to zero for every untracked
// cell, so adding the whole contiguous delta array into the whole
// contiguous isogrid array in one BLAS call is exactly equivalent to
// adding the staged delta at each tracked cell individually, without the
// per-cell list-walk overhead.
func BulkAxpy(alpha float64, src, dst []float64) bool {
	if len(src) != len(dst) {
		return false
	}
	if len(src) == 0 {
		return true
	}
	x := blas64.Vector{N: len(src), Inc: 1, Data: src}
	y := blas64.Vector{N: len(dst), Inc: 1, Data: dst}
	blas64.Axpy(alpha, x, y)
	return true
}
