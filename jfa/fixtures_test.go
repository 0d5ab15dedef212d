// SPDX-License-Identifier: MIT

package jfa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlearn/jfa"
	"github.com/katalvlaran/lvlearn/matrix"
)

// Cookbook fixture: 2 speakers × 2 sessions, C = 2 components, D = 3.
var (
	cbMean     = []float64{0.1806, 0.0451, 0.7232, 0.3474, 0.6606, 0.3839}
	cbVariance = []float64{0.6273, 0.0216, 0.9106, 0.8006, 0.7458, 0.8131}
	cbD        = []float64{0.4106, 0.9843, 0.9456, 0.6766, 0.9883, 0.7668}
	cbV        = [][]float64{
		{0.3367, 0.4116}, {0.6624, 0.6026}, {0.2442, 0.7505},
		{0.2955, 0.5835}, {0.6802, 0.5518}, {0.5278, 0.5836},
	}
	cbU = [][]float64{
		{0.5118, 0.3464}, {0.0826, 0.8865}, {0.7196, 0.4547},
		{0.9962, 0.4134}, {0.3545, 0.2177}, {0.9713, 0.1257},
	}
	// speaker → session → values
	cbN = [][][]float64{
		{{0.1379, 0.2178}, {0.1821, 0.0418}},
		{{0.1069, 0.6164}, {0.9397, 0.3545}},
	}
	cbF = [][][]float64{
		{
			{0.3833, 0.6173, 0.5755, 0.5301, 0.2751, 0.2486},
			{0.4516, 0.2277, 0.8044, 0.9861, 0.0300, 0.5357},
		},
		{
			{0.0871, 0.8021, 0.9891, 0.0669, 0.9394, 0.0182},
			{0.6838, 0.7837, 0.5341, 0.8854, 0.8990, 0.6259},
		},
	}
	cbX = [][][]float64{
		{{0.9976, 0.1375}, {0.8116, 0.3900}},
		{{0.4857, 0.9274}, {0.8944, 0.9175}},
	}
	cbY = [][]float64{{0.2243, 0.2691}, {0.6730, 0.4775}}
	cbZ = [][]float64{
		{0.3089, 0.7261, 0.7829, 0.6938, 0.0098, 0.8432},
		{0.9223, 0.7710, 0.0427, 0.3782, 0.7043, 0.7295},
	}
)

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseRows(rows)
	require.NoError(t, err)

	return m
}

func cookbookMachine(t *testing.T) *jfa.BaseMachine {
	t.Helper()
	b, err := jfa.NewBaseMachine(cbMean, cbVariance, 2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, b.SetU(mustRows(t, cbU)))
	require.NoError(t, b.SetV(mustRows(t, cbV)))
	require.NoError(t, b.SetD(cbD))

	return b
}

func cookbookStats() [][]jfa.Stats {
	stats := make([][]jfa.Stats, len(cbN))
	for i := range cbN {
		for h := range cbN[i] {
			stats[i] = append(stats[i], jfa.Stats{N: cbN[i][h], F: cbF[i][h]})
		}
	}

	return stats
}

func cookbookX(t *testing.T) []*matrix.Dense {
	t.Helper()
	xs := make([]*matrix.Dense, len(cbX))
	for i := range cbX {
		xs[i] = mustRows(t, cbX[i])
	}

	return xs
}

func zeroX(t *testing.T) []*matrix.Dense {
	t.Helper()
	xs := make([]*matrix.Dense, len(cbX))
	for i := range xs {
		x, err := matrix.NewDense(2, 2)
		require.NoError(t, err)
		xs[i] = x
	}

	return xs
}

func zeros(speakers, n int) [][]float64 {
	out := make([][]float64, speakers)
	for i := range out {
		out[i] = make([]float64, n)
	}

	return out
}

// preparedTrainer returns a trainer over the cookbook statistics with the
// given factors set and both sums precomputed.
func preparedTrainer(t *testing.T, b *jfa.BaseMachine, x []*matrix.Dense, y, z [][]float64, opts ...jfa.Option) *jfa.Trainer {
	t.Helper()
	tr, err := jfa.NewTrainer(b, opts...)
	require.NoError(t, err)
	require.NoError(t, tr.SetStatistics(cookbookStats()))
	require.NoError(t, tr.SetSpeakerFactors(x, y, z))
	require.NoError(t, tr.PrecomputeSumStatisticsN())
	require.NoError(t, tr.PrecomputeSumStatisticsF())

	return tr
}

func requireRowsClose(t *testing.T, want [][]float64, got *matrix.Dense, tol float64) {
	t.Helper()
	require.Equal(t, len(want), got.Rows(), "rows")
	for i := range want {
		require.Equal(t, len(want[i]), got.Cols(), "cols")
		for j, w := range want[i] {
			require.InDeltaf(t, w, got.Row(i)[j], tol, "[%d,%d]", i, j)
		}
	}
}

func requireVecClose(t *testing.T, want, got []float64, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for k := range want {
		require.InDeltaf(t, want[k], got[k], tol, "[%d]", k)
	}
}

func concat(vs ...[]float64) []float64 {
	var out []float64
	for _, v := range vs {
		out = append(out, v...)
	}

	return out
}
