package grid

import "errors"

// ErrActiveGrid is returned by Resize when called on a grid that is
// currently active; resize is only permitted while inactive.
var ErrActiveGrid = errors.New("grid: resize only permitted while inactive")
