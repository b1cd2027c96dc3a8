package poly

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/feltech/felt"
	"github.com/feltech/felt/numeric"
)

// normalH is the central-difference step used to estimate vertex normals
// from the interpolated isogrid, the same step and technique
// surface.Surface.sampledGradient uses for raycast refinement (see
// DESIGN.md: both are continuous-position gradients of the same
// numeric.Lerp field, so they share an idiom rather than duplicating one
// ad hoc).
const normalH = 0.5

// gradient estimates the isogrid's gradient at the continuous position p
// via central differences of numeric.Lerp, giving the (unnormalised)
// surface normal used for 3D vertex normals.
func (c *ChildPoly) gradient(p felt.VecDf) (felt.VecDf, error) {
	d := len(p)
	grad := make(felt.VecDf, d)
	for axis := 0; axis < d; axis++ {
		hi := p.Clone()
		hi[axis] += normalH
		lo := p.Clone()
		lo[axis] -= normalH
		f1, err := numeric.Lerp(c.isogrid, hi)
		if err != nil {
			return nil, err
		}
		f0, err := numeric.Lerp(c.isogrid, lo)
		if err != nil {
			return nil, err
		}
		grad[axis] = (f1 - f0) / (2 * normalH)
	}
	return grad, nil
}

// normalize3 unit-normalises a 3D vertex normal via gonum's r3 package
// rather than felt.VecDf.Normalized, since a vertex normal is always
// exactly three components and r3.Unit is the idiomatic fixed-size
// vector operation for it.
func normalize3(v felt.VecDf) felt.VecDf {
	u := r3.Unit(r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	return felt.VecDf{u.X, u.Y, u.Z}
}
