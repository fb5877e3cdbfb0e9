// Package engine implements the iterative relaxation kernel: per-step force
// assembly over a shared force buffer (segment-segment repulsion,
// point-segment repulsion, boundary keep-in, fixed-length and
// fixed-orientation corrections), broadphase candidate pruning, and a
// momentum integrator with movement clamping and a late-phase relaxation
// fade.
//
// The engine is single-threaded and synchronous: one call to Step runs to
// completion, mutating the positions of movable points in place. Construction
// is cheap; all cached state is built lazily on the first Step.
package engine
