package grid

import "testing"

func TestBulkAxpyAddsScaled(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	dst := []float64{10, 10, 10, 10}
	if !BulkAxpy(2, src, dst) {
		t.Fatal("expected BulkAxpy to succeed on equal-length slices")
	}
	want := []float64{12, 14, 16, 18}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestBulkAxpyRejectsMismatchedLengths(t *testing.T) {
	if BulkAxpy(1, []float64{1, 2}, []float64{1}) {
		t.Fatal("expected BulkAxpy to reject mismatched lengths")
	}
}

func TestBulkAxpyEmptyIsNoop(t *testing.T) {
	if !BulkAxpy(1, nil, nil) {
		t.Fatal("expected BulkAxpy to accept empty slices")
	}
}
