// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.
//   • Keep all data finite and well-formed.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlearn/matrix"
)

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)

	return m
}

// MustRows builds a Dense from literal rows or fails the test.
func MustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseRows(rows)
	require.NoError(t, err)

	return m
}

// MustAt reads m[i,j] or fails the test.
func MustAt(t *testing.T, m *matrix.Dense, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// RandomFill fills m with values in [-1, 1) from a seeded source.
func RandomFill(m *matrix.Dense, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	raw := m.Raw()
	for i := range raw {
		raw[i] = 2*rng.Float64() - 1
	}
}

// RandomSPD returns B·Bᵀ + n·I for a random B, which is symmetric positive definite.
func RandomSPD(t *testing.T, n int, seed int64) *matrix.Dense {
	t.Helper()
	b := MustDense(t, n, n)
	RandomFill(b, seed)
	bt, err := matrix.Transpose(b)
	require.NoError(t, err)
	spd, err := matrix.Mul(b, bt)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, spd.Set(i, i, MustAt(t, spd, i, i)+float64(n)))
	}

	return spd
}

// AllClose asserts |want[i][j] - got[i,j]| <= tol everywhere.
func AllClose(t *testing.T, want [][]float64, got *matrix.Dense, tol float64) {
	t.Helper()
	require.Equal(t, len(want), got.Rows(), "row count")
	for i := range want {
		require.Equal(t, len(want[i]), got.Cols(), "col count")
		for j := range want[i] {
			require.InDeltaf(t, want[i][j], MustAt(t, got, i, j), tol, "cell [%d,%d]", i, j)
		}
	}
}
