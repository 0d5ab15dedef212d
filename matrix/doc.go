// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra kernel shared by the
// lvlearn trainers.
//
// What & Why:
//
//	Dense is a row-major float64 container stored in one flat slice. On top of
//	it the package offers fail-fast kernels: element-wise Add/Sub/Scale/Hadamard,
//	matrix products (Mul, MulInto), transposition (Transpose, TransposeInto),
//	matrix-vector products, rank-one updates, and linear solvers (LU with
//	partial pivoting for general systems, Cholesky for symmetric positive
//	definite ones).
//
// Contracts:
//
//   - Kernels are pure: operands are never mutated.
//   - *Into kernels overwrite the destination completely. The destination is
//     reshaped first, so a shrinking shape never leaves stale cells behind.
//   - Shape violations fail with ErrDimensionMismatch before any work is done.
//   - Solvers fail with ErrSingular when a pivot is not usable.
//
// Complexity:
//
//	Element-wise kernels run in O(r*c). Mul runs in O(r*n*c). LU, Solve and
//	Inverse run in O(n^3); Cholesky-based solvers in O(n^3/3).
package matrix
