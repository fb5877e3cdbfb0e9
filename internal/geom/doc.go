// Package geom provides the closest-point primitives used by the relaxation
// kernels, plus the small numeric helpers (angle wrapping, clamped
// exponentials) that keep force magnitudes finite.
//
// All functions are allocation-free and operate on plain float64 coordinates.
// Degenerate inputs (zero-length segments, coincident geometry) never panic;
// the tie-break rules are fixed so that two runs over identical input produce
// identical results.
package geom
