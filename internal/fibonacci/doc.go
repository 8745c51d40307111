// Package fibonacci computes terms of the Fibonacci sequence seeded with
// F(0) = 0 and F(1) = 1.
//
// Compute is the plain entry point: a linear loop over arbitrary precision
// integers. The Calculator implementations (iterative, fast doubling, matrix
// exponentiation and, with the gmp build tag, GMP-backed fast doubling) add
// cancellation and progress reporting so that several algorithms can be run
// side by side and cross-checked by the orchestration layer.
package fibonacci
