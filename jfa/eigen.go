// SPDX-License-Identifier: MIT

package jfa

import (
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

// UpdateEigen solves the per-component systems behind every subspace update:
//
//	uv[:, c·D:(c+1)·D] = A[c]⁻¹ · C[:, c·D:(c+1)·D]
//
// A holds one r×r matrix per component, C and uv are r × C·D. A[c] need not
// be symmetric; it is solved by LU with partial pivoting.
//
// uv is written only when every component solved, so a failure leaves it
// untouched.
//
// Errors:
//   - ErrShapeMismatch when the shapes above do not hold.
//   - ErrSingular when some A[c] is singular (a component nobody occupies).
func UpdateEigen(a []*matrix.Dense, c, uv *matrix.Dense) error {
	if err := matrix.ValidateNotNil(append([]*matrix.Dense{c, uv}, a...)...); err != nil {
		return fmt.Errorf("UpdateEigen: %w", err)
	}
	if len(a) == 0 {
		return fmt.Errorf("UpdateEigen: %w", shapeErrorf("components", 0, 1))
	}
	r, svLen := c.Dims()
	if svLen%len(a) != 0 {
		return fmt.Errorf("UpdateEigen: %d columns over %d components: %w", svLen, len(a), ErrShapeMismatch)
	}
	if uv.Rows() != r || uv.Cols() != svLen {
		return fmt.Errorf("UpdateEigen: uv %dx%d, want %dx%d: %w", uv.Rows(), uv.Cols(), r, svLen, ErrShapeMismatch)
	}
	for k, ak := range a {
		if ak.Rows() != r || ak.Cols() != r {
			return fmt.Errorf("UpdateEigen: A[%d] %dx%d, want %dx%d: %w", k, ak.Rows(), ak.Cols(), r, r, ErrShapeMismatch)
		}
	}

	nFeatures := svLen / len(a)
	out, err := matrix.NewDense(r, svLen)
	if err != nil {
		return fmt.Errorf("UpdateEigen: %w", err)
	}
	block, err := matrix.NewDense(r, nFeatures)
	if err != nil {
		return fmt.Errorf("UpdateEigen: %w", err)
	}
	for k, ak := range a {
		for i := 0; i < r; i++ {
			copy(block.Row(i), c.Row(i)[k*nFeatures:(k+1)*nFeatures])
		}
		sol, err := matrix.Solve(ak, block)
		if err != nil {
			return fmt.Errorf("UpdateEigen: component %d: %w", k, err)
		}
		for i := 0; i < r; i++ {
			copy(out.Row(i)[k*nFeatures:(k+1)*nFeatures], sol.Row(i))
		}
	}

	return uv.CopyFrom(out)
}
