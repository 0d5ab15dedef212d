// SPDX-License-Identifier: MIT
// Package matrix: factorizations and linear solvers.
//
// Purpose:
//   - LU with partial pivoting for general square systems (Solve, Inverse).
//   - Cholesky (gonum) for symmetric positive definite systems (SolveSPD,
//     InverseSPD), the case every posterior covariance in the trainers hits.
//
// Determinism:
//   - Fixed loop orders; pivot choice breaks ties on the lowest row index.

package matrix

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LUFactors holds a pivoted Doolittle factorization P·A = L·U packed in one
// n×n buffer: the strict lower triangle holds L (unit diagonal implied) and the
// upper triangle holds U.
type LUFactors struct {
	n    int
	lu   []float64 // packed L\U, row-major
	perm []int     // perm[i] = original row placed at position i
}

// LU computes the factorization P·A = L·U with partial (row) pivoting.
// Implementation:
//   - Stage 1: Validate m (not nil, square); copy it into the packed buffer.
//   - Stage 2: For each column k pick the row with the largest |a[i,k]|, i >= k,
//     swap it into place, then eliminate below the pivot.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (non-square),
//   - ErrSingular when the chosen pivot magnitude is <= eps (WithEpsilon).
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func LU(m *Dense, opts ...Option) (*LUFactors, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	o := gatherOptions(opts...)

	n := m.r
	f := &LUFactors{n: n, lu: make([]float64, n*n), perm: make([]int, n)}
	copy(f.lu, m.data)
	for i := range f.perm {
		f.perm[i] = i
	}

	var (
		i, j, k, p int
		maxAbs, v  float64
		pivot, l   float64
	)
	for k = 0; k < n; k++ {
		// Stage 2.1: pivot search on column k
		p, maxAbs = k, math.Abs(f.lu[k*n+k])
		for i = k + 1; i < n; i++ {
			if v = math.Abs(f.lu[i*n+k]); v > maxAbs {
				p, maxAbs = i, v
			}
		}
		if maxAbs <= o.eps {
			return nil, matrixErrorf(opLU, fmt.Errorf("pivot %d: %w", k, ErrSingular))
		}
		// Stage 2.2: row swap
		if p != k {
			for j = 0; j < n; j++ {
				f.lu[k*n+j], f.lu[p*n+j] = f.lu[p*n+j], f.lu[k*n+j]
			}
			f.perm[k], f.perm[p] = f.perm[p], f.perm[k]
		}
		// Stage 2.3: elimination
		pivot = f.lu[k*n+k]
		for i = k + 1; i < n; i++ {
			l = f.lu[i*n+k] / pivot
			f.lu[i*n+k] = l
			if l == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				f.lu[i*n+j] -= l * f.lu[k*n+j]
			}
		}
	}

	return f, nil
}

// L returns the unit lower-triangular factor as a fresh Dense.
func (f *LUFactors) L() *Dense {
	out := &Dense{r: f.n, c: f.n, data: make([]float64, f.n*f.n)}
	for i := 0; i < f.n; i++ {
		for j := 0; j < i; j++ {
			out.data[i*f.n+j] = f.lu[i*f.n+j]
		}
		out.data[i*f.n+i] = 1
	}

	return out
}

// U returns the upper-triangular factor as a fresh Dense.
func (f *LUFactors) U() *Dense {
	out := &Dense{r: f.n, c: f.n, data: make([]float64, f.n*f.n)}
	for i := 0; i < f.n; i++ {
		for j := i; j < f.n; j++ {
			out.data[i*f.n+j] = f.lu[i*f.n+j]
		}
	}

	return out
}

// Perm returns a copy of the row permutation: row i of P·A is row Perm()[i] of A.
func (f *LUFactors) Perm() []int {
	out := make([]int, len(f.perm))
	copy(out, f.perm)

	return out
}

// SolveVec solves A·x = b for one right-hand side.
// Errors: ErrDimensionMismatch when len(b) != n.
// Complexity: O(n^2).
func (f *LUFactors) SolveVec(b []float64) ([]float64, error) {
	if err := ValidateVecLen(b, f.n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	x := make([]float64, f.n)
	f.solveInPlace(b, x)

	return x, nil
}

// solveInPlace runs forward (L·y = P·b) then backward (U·x = y) substitution.
func (f *LUFactors) solveInPlace(b, x []float64) {
	n := f.n
	var (
		i, k int
		sum  float64
	)
	// Forward substitution, top-down
	for i = 0; i < n; i++ {
		sum = b[f.perm[i]]
		for k = 0; k < i; k++ {
			sum -= f.lu[i*n+k] * x[k]
		}
		x[i] = sum
	}
	// Backward substitution, bottom-up
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= f.lu[i*n+k] * x[k]
		}
		x[i] = sum / f.lu[i*n+i]
	}
}

// Solve solves A·X = B column by column and returns X (n × B.Cols).
// Errors: ErrNilMatrix, ErrDimensionMismatch (B.Rows != n).
// Complexity: O(n^2 * B.Cols).
func (f *LUFactors) Solve(b *Dense) (*Dense, error) {
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if b.r != f.n {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	out := &Dense{r: b.r, c: b.c, data: make([]float64, len(b.data))}
	col := make([]float64, f.n)
	x := make([]float64, f.n)
	for j := 0; j < b.c; j++ {
		for i := 0; i < f.n; i++ {
			col[i] = b.data[i*b.c+j]
		}
		f.solveInPlace(col, x)
		for i := 0; i < f.n; i++ {
			out.data[i*b.c+j] = x[i]
		}
	}

	return out, nil
}

// Solve solves the general square system A·X = B via LU with partial pivoting.
// A is n×n, B is n×k; the result is n×k. Operands are not mutated.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrSingular.
//
// Complexity:
//   - Time O(n^3 + n^2*k), Space O(n^2 + n*k).
func Solve(a, b *Dense, opts ...Option) (*Dense, error) {
	if err := ValidateNotNil(a, b); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if a.r != b.r {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	f, err := LU(a, opts...)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	return f.Solve(b)
}

// Inverse computes A^{-1} through LU with partial pivoting.
// Prefer Solve when only A^{-1}·B is needed.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrSingular.
// Complexity: O(n^3).
func Inverse(a *Dense, opts ...Option) (*Dense, error) {
	f, err := LU(a, opts...)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	id, err := Identity(a.r)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return f.Solve(id)
}

// choleskyOf factorizes the symmetric matrix whose upper triangle is stored in
// a. The lower triangle is never read. A pivot u_ii² <= eps is reported as
// ErrSingular, the same rule LU applies to |u_ii|.
func choleskyOf(a *Dense, eps float64) (*mat.Cholesky, error) {
	data := make([]float64, len(a.data))
	copy(data, a.data)
	var ch mat.Cholesky
	if ok := ch.Factorize(mat.NewSymDense(a.r, data)); !ok {
		return nil, ErrSingular
	}
	u := ch.RawU()
	for i := 0; i < a.r; i++ {
		if d := u.At(i, i); d*d <= eps {
			return nil, fmt.Errorf("pivot %d: %w", i, ErrSingular)
		}
	}

	return &ch, nil
}

// ignoreCondition drops gonum's mat.Condition warning: the solution is still
// computed, only its accuracy is flagged.
func ignoreCondition(err error) error {
	var cond mat.Condition
	if err == nil || errors.As(err, &cond) {
		return nil
	}

	return err
}

// fromGonum copies a gonum matrix into a fresh Dense.
func fromGonum(src mat.Matrix) *Dense {
	r, c := src.Dims()
	out := &Dense{r: r, c: c, data: make([]float64, r*c)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = src.At(i, j)
		}
	}

	return out
}

// SolveSPD solves A·X = B for symmetric positive definite A using a Cholesky
// factorization. Only the upper triangle of A is read.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch,
//   - ErrSingular when the factorization meets a pivot not above the
//     tolerance (WithEpsilon, DefaultEpsilon otherwise).
//
// Complexity:
//   - Time O(n^3/3 + n^2*k).
func SolveSPD(a, b *Dense, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opSolveSPD, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSolveSPD, err)
	}
	if b.r != a.r {
		return nil, matrixErrorf(opSolveSPD, ErrDimensionMismatch)
	}
	ch, err := choleskyOf(a, o.eps)
	if err != nil {
		return nil, matrixErrorf(opSolveSPD, err)
	}
	rhs := make([]float64, len(b.data))
	copy(rhs, b.data)
	var x mat.Dense
	if err = ignoreCondition(ch.SolveTo(&x, mat.NewDense(b.r, b.c, rhs))); err != nil {
		return nil, matrixErrorf(opSolveSPD, err)
	}

	return fromGonum(&x), nil
}

// InverseSPD returns A^{-1} for symmetric positive definite A (full storage,
// both triangles filled). Only the upper triangle of A is read.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrSingular (pivot tolerance as
// in SolveSPD).
func InverseSPD(a *Dense, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opInverseSPD, err)
	}
	ch, err := choleskyOf(a, o.eps)
	if err != nil {
		return nil, matrixErrorf(opInverseSPD, err)
	}
	var inv mat.SymDense
	if err = ignoreCondition(ch.InverseTo(&inv)); err != nil {
		return nil, matrixErrorf(opInverseSPD, err)
	}

	return fromGonum(&inv), nil
}
