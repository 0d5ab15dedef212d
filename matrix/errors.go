// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// Every kernel returns one of these sentinels, wrapped with an operation tag
// via matrixErrorf. Callers and tests match them with errors.Is.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Kernels wrap with fmt.Errorf("Op: %w", ErrX);
// callers still use errors.Is to match.
//
// ERROR PRIORITY (enforced in tests):
// nil -> shape -> dimension mismatch -> aliasing -> numeric (singular).

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) return this, they do not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., Add with different shapes, or Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates that a nil *Dense (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrAliased is returned by the *Into kernels when the destination shares
	// storage with one of the operands.
	ErrAliased = errors.New("matrix: destination aliases an operand")

	// ErrSingular is returned when a factorization meets a pivot whose magnitude
	// does not exceed the configured tolerance, or when a Cholesky factorization
	// finds a non-positive pivot.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")
)
