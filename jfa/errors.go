// SPDX-License-Identifier: MIT

package jfa

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

var (
	// ErrShapeMismatch is returned when statistics, factors or subspaces
	// disagree with the base machine dimensions or with each other.
	ErrShapeMismatch = errors.New("jfa: shape mismatch")

	// ErrSingular is matrix.ErrSingular, re-exported so callers of this
	// package need not import matrix to match it.
	ErrSingular = matrix.ErrSingular

	// ErrNoStatistics is returned by estimator and updater operations called
	// before SetStatistics, or before the statistic sums were precomputed.
	ErrNoStatistics = errors.New("jfa: statistics not set or not precomputed")

	// ErrStageOrder is returned when a subspace is re-estimated before the
	// factor pass that fills its accumulators (UpdateU before UpdateX, ...).
	ErrStageOrder = errors.New("jfa: subspace update before its factor update")

	// ErrInvalidModel is returned for a base machine with inconsistent or
	// non-positive parameters (variance <= 0, zero components, ...).
	ErrInvalidModel = errors.New("jfa: invalid model")
)

// ShapeError reports which container disagreed and how.
// It matches ErrShapeMismatch under errors.Is.
type ShapeError struct {
	What      string
	Got, Want int
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("jfa: shape mismatch: %s is %d, want %d", e.What, e.Got, e.Want)
}

// Unwrap exposes ErrShapeMismatch.
func (e ShapeError) Unwrap() error { return ErrShapeMismatch }

func shapeErrorf(what string, got, want int) error {
	return ShapeError{What: what, Got: got, Want: want}
}
