// SPDX-License-Identifier: MIT

package jfa

import (
	"fmt"
	"math"
)

// Stats holds the Baum-Welch statistics of one recording session against
// a C-component, D-dimensional UBM.
//
//   - N: zeroth order, one occupancy count per component (length C).
//   - F: first order, accumulated observations per component, component
//     major (length C·D; entries c·D .. c·D+D-1 belong to component c).
type Stats struct {
	N []float64
	F []float64
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	return Stats{
		N: append([]float64(nil), s.N...),
		F: append([]float64(nil), s.F...),
	}
}

// validate checks s against a model with nComponents components and a
// supervector of length svLen.
func (s Stats) validate(nComponents, svLen int) error {
	if len(s.N) != nComponents {
		return shapeErrorf("len(N)", len(s.N), nComponents)
	}
	if len(s.F) != svLen {
		return shapeErrorf("len(F)", len(s.F), svLen)
	}
	for c, n := range s.N {
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("N[%d] = %g: %w", c, n, ErrShapeMismatch)
		}
	}
	for k, f := range s.F {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("F[%d] = %g: %w", k, f, ErrShapeMismatch)
		}
	}

	return nil
}

// validateStats checks a speaker → sessions collection. Every speaker needs
// at least one session.
func validateStats(stats [][]Stats, nComponents, svLen int) error {
	if len(stats) == 0 {
		return fmt.Errorf("no speakers: %w", ErrNoStatistics)
	}
	for i, sessions := range stats {
		if len(sessions) == 0 {
			return fmt.Errorf("speaker %d: %w", i, shapeErrorf("sessions", 0, 1))
		}
		for h, s := range sessions {
			if err := s.validate(nComponents, svLen); err != nil {
				return fmt.Errorf("speaker %d session %d: %w", i, h, err)
			}
		}
	}

	return nil
}

func cloneStats(stats [][]Stats) [][]Stats {
	out := make([][]Stats, len(stats))
	for i, sessions := range stats {
		out[i] = make([]Stats, len(sessions))
		for h, s := range sessions {
			out[i][h] = s.Clone()
		}
	}

	return out
}
