// Package numeric implements the finite-difference and interpolation
// kernels the surface engine and polygoniser need: forward/backward/
// central/upwind gradients, curvature, divergence, and D-dimensional
// linear interpolation. Every
// kernel operates against the small Scalar interface rather than a
// concrete grid type, so it works unchanged over a Dense, Tracked, or
// Partitioned float grid.
package numeric

import (
	"github.com/feltech/felt"
	"gonum.org/v1/gonum/floats"
)

// Scalar is satisfied by any grid that can report a float64 at an integer
// position — grid.Dense[float64], grid.Tracked[float64],
// grid.LazyTracked[float64], and grid.Partitioned[float64] all implement
// it without any adapter.
type Scalar interface {
	Get(p felt.VecDi) (float64, error)
}

// ForwardDiff computes ∂f/∂x⁺ᵢ(p) = (f(p+eᵢ) − f(p)) / Δx.
func ForwardDiff(g Scalar, p felt.VecDi, axis int, dx float64) (float64, error) {
	f0, err := g.Get(p)
	if err != nil {
		return 0, err
	}
	f1, err := g.Get(p.AddAxis(axis, 1))
	if err != nil {
		return 0, err
	}
	return (f1 - f0) / dx, nil
}

// BackwardDiff computes ∂f/∂x⁻ᵢ(p) = (f(p) − f(p−eᵢ)) / Δx.
func BackwardDiff(g Scalar, p felt.VecDi, axis int, dx float64) (float64, error) {
	f0, err := g.Get(p)
	if err != nil {
		return 0, err
	}
	fm1, err := g.Get(p.AddAxis(axis, -1))
	if err != nil {
		return 0, err
	}
	return (f0 - fm1) / dx, nil
}

// CentralDiff computes (f(p+eᵢ) − f(p−eᵢ)) / (2Δx).
func CentralDiff(g Scalar, p felt.VecDi, axis int, dx float64) (float64, error) {
	f1, err := g.Get(p.AddAxis(axis, 1))
	if err != nil {
		return 0, err
	}
	fm1, err := g.Get(p.AddAxis(axis, -1))
	if err != nil {
		return 0, err
	}
	return (f1 - fm1) / (2 * dx), nil
}

// SafeGradient computes the gradient at p axis by axis, using a central
// difference where both neighbours exist, a forward or backward
// difference at a boundary where only one does, or 0 where neither does.
func SafeGradient(g Scalar, p felt.VecDi, dx float64) felt.VecDf {
	d := len(p)
	grad := make(felt.VecDf, d)
	for axis := 0; axis < d; axis++ {
		hasFwd := true
		f1, err := g.Get(p.AddAxis(axis, 1))
		if err != nil {
			hasFwd = false
		}
		hasBwd := true
		fm1, err := g.Get(p.AddAxis(axis, -1))
		if err != nil {
			hasBwd = false
		}
		switch {
		case hasFwd && hasBwd:
			grad[axis] = (f1 - fm1) / (2 * dx)
		case hasFwd:
			f0, _ := g.Get(p)
			grad[axis] = (f1 - f0) / dx
		case hasBwd:
			f0, _ := g.Get(p)
			grad[axis] = (f0 - fm1) / dx
		default:
			grad[axis] = 0
		}
	}
	return grad
}

func clampNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampNonPos(v float64) float64 {
	if v > 0 {
		return 0
	}
	return v
}

// UpwindGradient computes the entropy-satisfying (upwind) gradient: per
// axis, clamp(f(p) − f(p−eᵢ), 0, ∞) + clamp(f(p+eᵢ) − f(p), −∞, 0),
// divided by Δx.
func UpwindGradient(g Scalar, p felt.VecDi, dx float64) (felt.VecDf, error) {
	d := len(p)
	grad := make(felt.VecDf, d)
	f0, err := g.Get(p)
	if err != nil {
		return nil, err
	}
	for axis := 0; axis < d; axis++ {
		fm1, err := g.Get(p.AddAxis(axis, -1))
		if err != nil {
			return nil, err
		}
		f1, err := g.Get(p.AddAxis(axis, 1))
		if err != nil {
			return nil, err
		}
		back := clampNonNeg(f0 - fm1)
		fwd := clampNonPos(f1 - f0)
		grad[axis] = (back + fwd) / dx
	}
	return grad, nil
}

// Curvature computes the mean curvature at p as half the componentwise
// sum of the difference between forward and backward principal normals,
// where each principal normal is the axial first difference divided by
// the L² norm of the full gradient computed with central differences on
// every other axis.
func Curvature(g Scalar, p felt.VecDi, dx float64) (float64, error) {
	d := len(p)
	central := make([]float64, d)
	for axis := 0; axis < d; axis++ {
		c, err := CentralDiff(g, p, axis, dx)
		if err != nil {
			return 0, err
		}
		central[axis] = c
	}
	sum := 0.0
	for axis := 0; axis < d; axis++ {
		fwd, err := ForwardDiff(g, p, axis, dx)
		if err != nil {
			return 0, err
		}
		bwd, err := BackwardDiff(g, p, axis, dx)
		if err != nil {
			return 0, err
		}

		gradFwd := append([]float64(nil), central...)
		gradFwd[axis] = fwd
		normFwd := floats.Norm(gradFwd, 2)

		gradBwd := append([]float64(nil), central...)
		gradBwd[axis] = bwd
		normBwd := floats.Norm(gradBwd, 2)

		var nFwd, nBwd float64
		if normFwd > felt.Tiny {
			nFwd = fwd / normFwd
		}
		if normBwd > felt.Tiny {
			nBwd = bwd / normBwd
		}
		sum += nFwd - nBwd
	}
	return sum / 2, nil
}

// Divergence computes the sum of componentwise forward-minus-backward
// first differences, divided by Δx².
func Divergence(g Scalar, p felt.VecDi, dx float64) (float64, error) {
	d := len(p)
	sum := 0.0
	for axis := 0; axis < d; axis++ {
		fwd, err := ForwardDiff(g, p, axis, dx)
		if err != nil {
			return 0, err
		}
		bwd, err := BackwardDiff(g, p, axis, dx)
		if err != nil {
			return 0, err
		}
		sum += fwd - bwd
	}
	return sum / (dx * dx), nil
}
