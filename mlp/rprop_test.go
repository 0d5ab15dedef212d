// SPDX-License-Identifier: MIT

package mlp_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlearn/matrix"
	"github.com/katalvlaran/lvlearn/mlp"
)

// newScalarRProp builds y = w·x + b, starting from w = b = 0.
func newScalarRProp(t *testing.T, opts ...mlp.Option) (*mlp.Machine, *mlp.RPropTrainer) {
	t.Helper()
	m := mustMachine(t, mlp.Linear, 1, 1)
	tr, err := mlp.NewRPropTrainer(m, 1, opts...)
	require.NoError(t, err)

	return m, tr
}

func TestRProp_GrowsStepWhileSignHolds(t *testing.T) {
	m, tr := newScalarRProp(t)
	in, tg := mustRows(t, [][]float64{{1}}), mustRows(t, [][]float64{{1}})

	// output 0 < target: both parameters move up by δ0
	require.NoError(t, tr.Train(m, in, tg))
	assert.InDelta(t, 0.1, m.Weights()[0].Raw()[0], 1e-15)
	assert.InDelta(t, 0.1, m.Biases()[0][0], 1e-15)

	// same sign again: δ = δ0·η+
	require.NoError(t, tr.Train(m, in, tg))
	assert.InDelta(t, 0.22, m.Weights()[0].Raw()[0], 1e-15)
	assert.InDelta(t, 0.22, m.Biases()[0][0], 1e-15)

	dw, db := tr.StepSizes()
	assert.InDelta(t, 0.12, dw[0].Raw()[0], 1e-15)
	assert.InDelta(t, 0.12, db[0][0], 1e-15)
}

func TestRProp_SignFlipShrinksAndSkips(t *testing.T) {
	m, tr := newScalarRProp(t)
	in, tg := mustRows(t, [][]float64{{1}}), mustRows(t, [][]float64{{0.05}})

	require.NoError(t, tr.Train(m, in, tg)) // w = b = 0.1, overshoot
	require.NoError(t, tr.Train(m, in, tg)) // flip: δ halves, no move
	assert.InDelta(t, 0.1, m.Weights()[0].Raw()[0], 1e-15)
	dw, _ := tr.StepSizes()
	assert.InDelta(t, 0.05, dw[0].Raw()[0], 1e-15)

	require.NoError(t, tr.Train(m, in, tg)) // neutral: move down by the halved δ
	assert.InDelta(t, 0.05, m.Weights()[0].Raw()[0], 1e-15)
	assert.InDelta(t, 0.05, m.Biases()[0][0], 1e-15)
}

func TestRProp_StepBounds(t *testing.T) {
	m, tr := newScalarRProp(t, mlp.WithDeltaZero(1), mlp.WithDeltaMax(1.5))
	in, tg := mustRows(t, [][]float64{{1}}), mustRows(t, [][]float64{{100}})
	for i := 0; i < 5; i++ {
		require.NoError(t, tr.Train(m, in, tg))
	}
	dw, _ := tr.StepSizes()
	assert.Equal(t, 1.5, dw[0].Raw()[0])

	tr.Reset()
	dw, _ = tr.StepSizes()
	assert.Equal(t, 1.0, dw[0].Raw()[0])

	_, err := mlp.NewRPropTrainer(m, 1, mlp.WithDeltaMin(2), mlp.WithDeltaMax(1))
	require.ErrorIs(t, err, mlp.ErrInvalidShape)
}

func TestRProp_BiasesZeroedWhenDisabled(t *testing.T) {
	m, tr := newScalarRProp(t, mlp.WithTrainBiases(false))
	m.FillBiases(3)
	require.NoError(t, tr.Train(m, mustRows(t, [][]float64{{1}}), mustRows(t, [][]float64{{1}})))
	assert.Zero(t, m.Biases()[0][0])
	assert.False(t, tr.TrainBiases())
}

func TestRProp_Incompatible(t *testing.T) {
	_, tr := newScalarRProp(t)
	other := mustMachine(t, mlp.Linear, 2, 1)
	assert.False(t, tr.IsCompatible(other))
	err := tr.Train(other, mustRows(t, [][]float64{{1, 1}}), mustRows(t, [][]float64{{1}}))
	require.ErrorIs(t, err, mlp.ErrIncompatibleNetwork)
}

func TestRProp_FitsXORShape(t *testing.T) {
	m := mustMachine(t, mlp.Tanh, 2, 4, 1)
	m.Randomize(rand.New(rand.NewSource(5)), -0.5, 0.5)
	tr, err := mlp.NewRPropTrainer(m, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.BatchSize())

	in := mustRows(t, [][]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}})
	tg := mustRows(t, [][]float64{{-0.8}, {0.8}, {0.8}, {-0.8}})
	before := sse(t, m, in, tg)
	for i := 0; i < 200; i++ {
		require.NoError(t, tr.Train(m, in, tg))
	}
	assert.Less(t, sse(t, m, in, tg), before)
}

func sse(t *testing.T, m *mlp.Machine, in, tg *matrix.Dense) float64 {
	t.Helper()
	out, err := m.Forward(in)
	require.NoError(t, err)
	var s float64
	for i, v := range out.Raw() {
		d := v - tg.Raw()[i]
		s += d * d
	}

	return s
}
