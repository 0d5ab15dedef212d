// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on Dense matrices,
// including element-wise addition, subtraction, matrix multiplication,
// transpose, and scalar scaling. All functions perform strict
// fail-fast validation and return clear errors on dimension mismatches.
//
// Notes:
//   - Allocating kernels return a fresh *Dense; operands are never mutated.
//   - *Into kernels reshape and fully overwrite their destination.

package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd           = "Add"
	opSub           = "Sub"
	opMul           = "Mul"
	opMulInto       = "MulInto"
	opTranspose     = "Transpose"
	opTransposeInto = "TransposeInto"
	opScale         = "Scale"
	opHadamard      = "Hadamard"
	opAddScaled     = "AddScaledInPlace"
	opMatVec        = "MatVec"
	opMatTVec       = "MatTVec"
	opAddOuter      = "AddOuter"
	opColumnSums    = "ColumnSums"
	opLU            = "LU"
	opSolve         = "Solve"
	opInverse       = "Inverse"
	opSolveSPD      = "SolveSPD"
	opInverseSPD    = "InverseSPD"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// addSub computes elementwise out = a + sign*b for sign ∈ {+1, -1}.
// Inputs must have identical shapes. A fresh Dense is allocated.
// Keeping `sign` as a float avoids an extra branch inside the hot loop.
func addSub(a, b *Dense, sign float64, opTag string) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	res := &Dense{r: a.r, c: a.c, data: make([]float64, len(a.data))}
	for i := range a.data {
		res.data[i] = a.data[i] + sign*b.data[i]
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B and returns a fresh Dense result.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func Add(a, b *Dense) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub computes the element-wise difference C = A - B and returns a fresh Dense result.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func Sub(a, b *Dense) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Scale returns a new matrix whose elements are alpha * m[i,j].
// Complexity: O(r*c).
func Scale(m *Dense, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := m.Clone()
	floats.Scale(alpha, res.data)

	return res, nil
}

// Hadamard computes the elementwise product (a ⊙ b) with a fresh Dense result.
// Complexity: O(r*c).
func Hadamard(a, b *Dense) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	res := &Dense{r: a.r, c: a.c, data: make([]float64, len(a.data))}
	floats.MulTo(res.data, a.data, b.data)

	return res, nil
}

// AddScaledInPlace performs dst += alpha*src. Shapes must match.
// This is the only kernel that mutates an operand, and it says so in its name.
// Complexity: O(r*c).
func AddScaledInPlace(dst *Dense, alpha float64, src *Dense) error {
	if err := ValidateBinarySameShape(dst, src); err != nil {
		return matrixErrorf(opAddScaled, err)
	}
	floats.AddScaled(dst.data, alpha, src.data)

	return nil
}

// Mul performs standard matrix multiplication C = A × B and returns a fresh Dense.
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: Delegate to the i→k→j row-major kernel shared with MulInto.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Determinism:
//   - Fixed loop order i→k→j: every C[i,j] accumulates A[i,k]*B[k,j] for k
//     ascending, starting from zero.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	res := &Dense{r: a.r, c: b.c, data: make([]float64, a.r*b.c)}
	mulKernel(res, a, b)

	return res, nil
}

// MulInto computes dst = A × B, reshaping dst to (A.Rows × B.Cols) first.
// Every cell of dst is overwritten; nothing from the previous contents
// survives, whatever its former shape.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAliased (dst shares storage with A or B).
//
// Complexity:
//   - Time O(r*n*c); no allocation when dst already has enough capacity.
func MulInto(dst, a, b *Dense) error {
	if err := ValidateNotNil(dst); err != nil {
		return matrixErrorf(opMulInto, err)
	}
	if err := ValidateMulCompatible(a, b); err != nil {
		return matrixErrorf(opMulInto, err)
	}
	if err := validateNoAlias(dst, a, b); err != nil {
		return matrixErrorf(opMulInto, err)
	}
	if err := dst.Reset(a.r, b.c); err != nil {
		return matrixErrorf(opMulInto, err)
	}
	mulKernel(dst, a, b)

	return nil
}

// mulKernel accumulates a×b into a zeroed res using row-major strides.
func mulKernel(res, a, b *Dense) {
	var (
		i, j, k                            int
		av                                 float64
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	aCols, bCols := a.c, b.c
	for i = 0; i < a.r; i++ {
		rowOffsetA = i * aCols
		rowOffsetR = i * bCols
		for k = 0; k < aCols; k++ {
			av = a.data[rowOffsetA+k]
			rowOffsetB = k * bCols
			for j = 0; j < bCols; j++ {
				res.data[rowOffsetR+j] += av * b.data[rowOffsetB+j]
			}
		}
	}
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func Transpose(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res := &Dense{r: m.c, c: m.r, data: make([]float64, len(m.data))}
	transposeKernel(res, m)

	return res, nil
}

// TransposeInto writes mᵀ into dst, reshaping dst to (m.Cols × m.Rows).
// Errors: ErrNilMatrix, ErrAliased.
func TransposeInto(dst, m *Dense) error {
	if err := ValidateNotNil(dst, m); err != nil {
		return matrixErrorf(opTransposeInto, err)
	}
	if err := validateNoAlias(dst, m); err != nil {
		return matrixErrorf(opTransposeInto, err)
	}
	if err := dst.Reset(m.c, m.r); err != nil {
		return matrixErrorf(opTransposeInto, err)
	}
	transposeKernel(dst, m)

	return nil
}

// transposeKernel maps data[i*cols + j] → res.data[j*rows + i].
func transposeKernel(res, m *Dense) {
	var i, j, baseSrc int
	rows, cols := m.r, m.c
	for i = 0; i < rows; i++ {
		baseSrc = i * cols
		for j = 0; j < cols; j++ {
			res.data[j*rows+i] = m.data[baseSrc+j]
		}
	}
}

// MatVec computes y = m * x for a column vector x.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != m.Cols).
// Complexity: O(r*c).
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		y[i] = floats.Dot(m.data[i*m.c:(i+1)*m.c], x)
	}

	return y, nil
}

// MatTVec computes y = mᵀ * x without materializing mᵀ.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != m.Rows).
// Complexity: O(r*c).
func MatTVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatTVec, err)
	}
	if err := ValidateVecLen(x, m.r); err != nil {
		return nil, matrixErrorf(opMatTVec, err)
	}
	y := make([]float64, m.c)
	for i := 0; i < m.r; i++ {
		floats.AddScaled(y, x[i], m.data[i*m.c:(i+1)*m.c])
	}

	return y, nil
}

// AddOuter performs the rank-one update m += alpha * x * yᵀ.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != Rows or len(y) != Cols).
// Complexity: O(r*c).
func AddOuter(m *Dense, alpha float64, x, y []float64) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf(opAddOuter, err)
	}
	if err := ValidateVecLen(x, m.r); err != nil {
		return matrixErrorf(opAddOuter, err)
	}
	if err := ValidateVecLen(y, m.c); err != nil {
		return matrixErrorf(opAddOuter, err)
	}
	for i := 0; i < m.r; i++ {
		floats.AddScaled(m.data[i*m.c:(i+1)*m.c], alpha*x[i], y)
	}

	return nil
}

// ColumnSums returns the vector of per-column sums (1ᵀ·m), summing rows in
// ascending order.
// Complexity: O(r*c).
func ColumnSums(m *Dense) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColumnSums, err)
	}
	out := make([]float64, m.c)
	for i := 0; i < m.r; i++ {
		floats.Add(out, m.data[i*m.c:(i+1)*m.c])
	}

	return out, nil
}
