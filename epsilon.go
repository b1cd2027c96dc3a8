package felt

// Epsilon biases layer-ID rounding so that a value sitting exactly at a
// half-integer (x.5) rounds away from zero rather than arbitrarily.
const Epsilon = 1e-6

// Tiny is the convergence threshold used by raycast refinement and by the
// "is this effectively zero" checks throughout the polygoniser and surface
// engine.
const Tiny = 1e-5
