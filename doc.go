// Package felt evolves implicit surfaces in 2D or 3D space using a
// sparse-field level-set method.
//
// An implicit surface is represented as the zero-crossing of a signed
// distance function discretised on a regular grid. Rather than storing the
// distance field densely, only a thin "narrow band" of cells surrounding
// the zero-crossing is maintained; the library tracks which cells belong
// to which band layer and reinitialises distances as the surface moves.
//
// Felt has no I/O, no rendering, and no file formats of its own — see
// felt/surface and felt/poly for the surface-evolution and polygonisation
// engines, felt/grid for the spatial substrate they are built on, and
// felt/numeric for the finite-difference kernels both depend on.
package felt
