package felt

import "math"

// roundHalfAwayFromZero rounds to the nearest integer, ties away from zero
// (Go's math.Round already does this for positive and negative values
// alike; named here so call sites read as "this is the rounding rule the
// layer-ID bias depends on").
func roundHalfAwayFromZero(v float64) int {
	return int(math.Round(v))
}
