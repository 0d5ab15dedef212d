// SPDX-License-Identifier: MIT

package jfa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvlearn/jfa"
	"github.com/katalvlaran/lvlearn/matrix"
)

func TestNewBaseMachine(t *testing.T) {
	b, err := jfa.NewBaseMachine(cbMean, cbVariance, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Components())
	assert.Equal(t, 3, b.Features())
	assert.Equal(t, 6, b.SupervectorLength())
	assert.Equal(t, 3, b.RankU())
	assert.Equal(t, 4, b.RankV())
	assert.Equal(t, cbMean, b.Mean())
	assert.Equal(t, cbVariance, b.Variance())
	for _, v := range b.D() {
		assert.Zero(t, v)
	}

	for _, tc := range []struct {
		name       string
		mean, vari []float64
		c, ru, rv  int
	}{
		{"zero components", cbMean, cbVariance, 0, 1, 1},
		{"zero rank", cbMean, cbVariance, 2, 0, 1},
		{"length mismatch", cbMean, cbVariance[:5], 2, 1, 1},
		{"indivisible", cbMean, cbVariance, 4, 1, 1},
		{"non-positive variance", cbMean, []float64{1, 1, 0, 1, 1, 1}, 2, 1, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jfa.NewBaseMachine(tc.mean, tc.vari, tc.c, tc.ru, tc.rv)
			require.ErrorIs(t, err, jfa.ErrInvalidModel)
		})
	}
}

func TestBaseMachine_Setters(t *testing.T) {
	b := cookbookMachine(t)
	require.ErrorIs(t, b.SetU(mustRows(t, [][]float64{{1, 2}})), jfa.ErrShapeMismatch)
	require.ErrorIs(t, b.SetV(nil), matrix.ErrNilMatrix)
	require.ErrorIs(t, b.SetD(cbD[:2]), jfa.ErrShapeMismatch)

	// setters copy
	d := append([]float64(nil), cbD...)
	require.NoError(t, b.SetD(d))
	d[0] = 99
	assert.Equal(t, cbD[0], b.D()[0])
}

func TestBaseMachine_Supervector(t *testing.T) {
	b := cookbookMachine(t)
	y := []float64{1, -1}
	z := []float64{1, 0, 0, 0, 0, 2}
	sv, err := b.Supervector(y, z)
	require.NoError(t, err)
	for k := range sv {
		want := cbMean[k] + cbV[k][0] - cbV[k][1] + cbD[k]*z[k]
		assert.InDelta(t, want, sv[k], 1e-12)
	}

	_, err = b.Supervector(y[:1], z)
	require.ErrorIs(t, err, jfa.ErrShapeMismatch)
}

func TestEnrol(t *testing.T) {
	b := cookbookMachine(t)
	u, v := b.U().Clone(), b.V().Clone()
	sessions := cookbookStats()[0]

	client, err := jfa.Enrol(context.Background(), b, sessions, 3)
	require.NoError(t, err)

	// the machine is frozen during enrolment
	assert.Equal(t, u.Raw(), b.U().Raw())
	assert.Equal(t, v.Raw(), b.V().Raw())
	assert.Equal(t, cbD, b.D())

	// the same passes run by hand give the same factors
	tr, err := jfa.NewTrainer(b)
	require.NoError(t, err)
	require.NoError(t, tr.SetStatistics([][]jfa.Stats{sessions}))
	require.NoError(t, tr.InitializeXYZ())
	require.NoError(t, tr.PrecomputeSumStatisticsN())
	require.NoError(t, tr.PrecomputeSumStatisticsF())
	for i := 0; i < 3; i++ {
		require.NoError(t, tr.UpdateX())
		require.NoError(t, tr.UpdateY())
		require.NoError(t, tr.UpdateZ())
	}
	assert.Equal(t, tr.Y()[0], client.Y())
	assert.Equal(t, tr.Z()[0], client.Z())
	assert.Equal(t, tr.X()[0].Raw(), client.X().Raw())

	want, err := b.Supervector(client.Y(), client.Z())
	require.NoError(t, err)
	assert.Equal(t, want, client.Mean())
}

func TestEnrol_Errors(t *testing.T) {
	b := cookbookMachine(t)
	_, err := jfa.Enrol(context.Background(), b, nil, 1)
	require.ErrorIs(t, err, jfa.ErrShapeMismatch)

	_, err = jfa.Enrol(context.Background(), b, cookbookStats()[0], -1)
	require.ErrorIs(t, err, jfa.ErrInvalidModel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = jfa.Enrol(ctx, b, cookbookStats()[0], 1)
	require.ErrorIs(t, err, context.Canceled)
}
