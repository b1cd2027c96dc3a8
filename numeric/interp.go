package numeric

import "github.com/feltech/felt"

// Lerp samples g at a fractional D-dimensional position via bilinear (D=2)
// or trilinear (D=3) interpolation over the 2^D surrounding grid corners.
func Lerp(g Scalar, p felt.VecDf) (float64, error) {
	d := len(p)
	base := p.Floor()
	frac := make([]float64, d)
	for i := 0; i < d; i++ {
		frac[i] = p[i] - float64(base[i])
	}

	n := 1 << uint(d)
	vals := make([]float64, n)
	for mask := 0; mask < n; mask++ {
		corner := base.Clone()
		for axis := 0; axis < d; axis++ {
			if mask&(1<<uint(axis)) != 0 {
				corner[axis]++
			}
		}
		v, err := g.Get(corner)
		if err != nil {
			return 0, err
		}
		vals[mask] = v
	}

	// Reduce one axis at a time: adjacent entries vals[2i], vals[2i+1] always
	// differ only in the current lowest-order bit, which is axis's bit by
	// construction above, so a flat stride-1 pairing is correct at every
	// step without re-deriving the stride from the original mask.
	for axis := 0; axis < d; axis++ {
		w := frac[axis]
		next := make([]float64, len(vals)/2)
		for i := range next {
			lo, hi := vals[2*i], vals[2*i+1]
			next[i] = lo + (hi-lo)*w
		}
		vals = next
	}
	return vals[0], nil
}
