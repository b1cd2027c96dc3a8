package surface

import (
	"math"

	"github.com/feltech/felt"
	"github.com/feltech/felt/numeric"
)

// rayBoxEntry returns the ray parameter t at which the ray first enters
// the axis-aligned box [lo, hi], via the standard slab method.
func rayBoxEntry(origin, dir, lo, hi felt.VecDf) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	for i := range origin {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func pointInBox(p, lo, hi felt.VecDf) bool {
	for i := range p {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}

func perturb(p felt.VecDf, axis int, delta float64) felt.VecDf {
	q := make(felt.VecDf, len(p))
	copy(q, p)
	q[axis] += delta
	return q
}

// gradientH is the central-difference step used to estimate the gradient
// of the interpolated isogrid at a continuous sample position.
const gradientH = 0.5

// sampledGradient estimates the gradient of the interpolated isogrid at
// the continuous position p via central differences of numeric.Lerp.
func (s *Surface) sampledGradient(p felt.VecDf) (felt.VecDf, error) {
	d := len(p)
	grad := make(felt.VecDf, d)
	for axis := 0; axis < d; axis++ {
		f1, err := numeric.Lerp(s.isogrid, perturb(p, axis, gradientH))
		if err != nil {
			return nil, err
		}
		f0, err := numeric.Lerp(s.isogrid, perturb(p, axis, -gradientH))
		if err != nil {
			return nil, err
		}
		grad[axis] = (f1 - f0) / (2 * gradientH)
	}
	return grad, nil
}

// refine performs Newton-style zero-crossing refinement:
// sample ← sample − n·interp(sample), recomputing the normal each
// iteration, terminating when |interp| drops to s.Config.ConvergeEpsilon
// or the sample leaves the isogrid.
func (s *Surface) refine(sample, dir felt.VecDf) (felt.VecDf, bool) {
	n, err := s.sampledGradient(sample)
	if err != nil {
		return nil, false
	}
	n = n.Normalized()
	if n.Dot(dir) >= 0 {
		return nil, false // surface faces away from the ray; not this crossing
	}
	for iter := 0; iter < s.Config.NewtonIters; iter++ {
		val, err := numeric.Lerp(s.isogrid, sample)
		if err != nil {
			return nil, false
		}
		if math.Abs(val) <= s.Config.ConvergeEpsilon {
			return sample, true
		}
		n, err = s.sampledGradient(sample)
		if err != nil {
			return nil, false
		}
		n = n.Normalized()
		sample = sample.Sub(n.Scale(val))
		if !s.isogrid.Inside(sample.Floor()) {
			return nil, false
		}
	}
	return nil, false
}

// Ray casts from origin along dir and returns the first intersection with
// the zero-level surface, or felt.NullPos(d) on miss.
//
// A partition-parallel host would enumerate candidate partitions by
// marching axis-aligned planes spaced by the partition size, sort them by
// distance, and walk each in turn so it can short-circuit on the nearest
// hit. A single sequential walk across the whole isogrid's bounding box,
// in increasing order of the ray parameter, visits exactly the same
// samples in exactly the same order and returns the same first hit — the
// partition enumeration is a concurrency optimisation with no observable
// effect on the result, so it is collapsed here (see DESIGN.md).
func (s *Surface) Ray(origin, dir felt.VecDf) felt.VecDf {
	d := len(origin)
	dir = dir.Normalized()
	if dir.Norm() == 0 {
		return felt.NullPos(d)
	}

	lo, hi := s.Bounds()
	loF := lo.ToFloat()
	hiF := hi.ToFloat()
	for i := range hiF {
		hiF[i]++ // cell hi is inclusive; the walkable box extends one unit past it
	}

	t, ok := rayBoxEntry(origin, dir, loF, hiF)
	if !ok {
		s.Logger.Debug("raycast_miss", "reason", "outside_grid")
		return felt.NullPos(d)
	}
	if t < 0 {
		t = 0
	}

	step := s.Config.StepSize
	for i := 0; i < s.Config.MaxSteps; i++ {
		sample := origin.Add(dir.Scale(t))
		if !pointInBox(sample, loF, hiF) {
			break
		}
		p := sample.Floor()
		if s.isogrid.Inside(p) {
			if v, err := s.isogrid.Get(p); err == nil && s.layerID(v) == 0 {
				if hit, ok := s.refine(sample, dir); ok {
					s.Logger.Debug("raycast_hit", "pos", hit, "t", t)
					return hit
				}
			}
		}
		t += step
	}
	s.Logger.Debug("raycast_miss", "reason", "no_zero_crossing")
	return felt.NullPos(d)
}
