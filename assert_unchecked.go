//go:build felt_noassert

package felt

// This file is the "unchecked" half of the single feature flag. Built with
// -tags felt_noassert, every check is elided (always succeeds) for a
// release configuration; see assert.go for the checked default build.

// CheckInside is a no-op in this build.
func CheckInside(p, offset, size VecDi, active bool) error { return nil }

// CheckActive is a no-op in this build.
func CheckActive(active bool) error { return nil }

// CheckDelta is a no-op in this build.
func CheckDelta(dv float64) error { return nil }

// CheckLayerMove is a no-op in this build.
func CheckLayerMove(fromInBand, toInBand bool) error { return nil }

// Checked reports whether this build has the assertion checks compiled in.
func Checked() bool { return false }
