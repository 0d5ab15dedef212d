// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlearn/matrix"
)

func TestIdentity(t *testing.T) {
	id, err := matrix.Identity(3)
	require.NoError(t, err)
	AllClose(t, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, id, 0)

	_, err = matrix.Identity(0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestNewDenseFrom_Copies(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	m, err := matrix.NewDenseFrom(2, 3, src)
	require.NoError(t, err)
	src[0] = 100
	assert.Equal(t, 1.0, MustAt(t, m, 0, 0))
	r, c := m.Dims()
	assert.Equal(t, []int{2, 3}, []int{r, c})
}

func TestRowColViews(t *testing.T) {
	m := MustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})

	row := m.Row(1)
	row[0] = 30
	assert.Equal(t, 30.0, MustAt(t, m, 1, 0), "Row shares storage")
	assert.Len(t, append(row, 9), 3)
	assert.Equal(t, 5.0, MustAt(t, m, 2, 0), "append on Row must not clobber the next row")

	col := m.Col(1)
	col[0] = -1
	assert.Equal(t, []float64{-1, 4, 6}, col)
	assert.Equal(t, 2.0, MustAt(t, m, 0, 1), "Col is a copy")
}

func TestCloneAndCopyFrom(t *testing.T) {
	m := MustRows(t, [][]float64{{1, 2}, {3, 4}})
	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 9))
	assert.Equal(t, 1.0, MustAt(t, m, 0, 0))

	require.NoError(t, m.CopyFrom(c))
	assert.Equal(t, 9.0, MustAt(t, m, 0, 0))
	require.ErrorIs(t, m.CopyFrom(nil), matrix.ErrNilMatrix)
	require.ErrorIs(t, m.CopyFrom(MustDense(t, 1, 2)), matrix.ErrDimensionMismatch)
}

func TestReset_ReusesAndZeroes(t *testing.T) {
	m := MustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, m.Reset(1, 2))
	assert.Equal(t, 1, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, []float64{0, 0}, m.Raw())

	require.NoError(t, m.Reset(3, 3))
	assert.Len(t, m.Raw(), 9)
	require.ErrorIs(t, m.Reset(0, 1), matrix.ErrInvalidDimensions)
}

func TestFillZeroString(t *testing.T) {
	m := MustDense(t, 2, 2)
	m.Fill(1.5)
	assert.Equal(t, "[1.5, 1.5]\n[1.5, 1.5]\n", m.String())
	m.Zero()
	assert.Equal(t, []float64{0, 0, 0, 0}, m.Raw())
}
