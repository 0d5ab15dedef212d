// SPDX-License-Identifier: MIT

package jfa

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlearn/matrix"
)

// BaseMachine holds the speaker-independent JFA hyper-parameters:
//
//   - m, Σ: UBM mean and diagonal variance supervectors (length C·D), read only;
//   - U:    eigenchannels, C·D × ru;
//   - V:    eigenvoices, C·D × rv;
//   - d:    diagonal of the residual matrix D, length C·D.
//
// Supervector rows are grouped by component: rows c·D .. c·D+D-1 of U and V
// belong to component c.
type BaseMachine struct {
	nComponents int
	nFeatures   int

	mean     []float64
	variance []float64

	u *matrix.Dense
	v *matrix.Dense
	d []float64
}

// NewBaseMachine builds a machine around a UBM given by its mean and variance
// supervectors. U, V and d start at zero.
//
// Errors:
//   - ErrInvalidModel if nComponents, ru or rv is < 1, if the supervectors
//     differ in length or are not a multiple of nComponents, or if a variance
//     is not strictly positive.
func NewBaseMachine(mean, variance []float64, nComponents, ru, rv int) (*BaseMachine, error) {
	if nComponents < 1 || ru < 1 || rv < 1 {
		return nil, fmt.Errorf("NewBaseMachine: C=%d ru=%d rv=%d: %w", nComponents, ru, rv, ErrInvalidModel)
	}
	if len(mean) == 0 || len(mean) != len(variance) || len(mean)%nComponents != 0 {
		return nil, fmt.Errorf("NewBaseMachine: mean %d, variance %d, C=%d: %w",
			len(mean), len(variance), nComponents, ErrInvalidModel)
	}
	for k, e := range variance {
		if !(e > 0) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("NewBaseMachine: variance[%d] = %g: %w", k, e, ErrInvalidModel)
		}
	}
	svLen := len(mean)
	u, err := matrix.NewDense(svLen, ru)
	if err != nil {
		return nil, fmt.Errorf("NewBaseMachine: %w", err)
	}
	v, err := matrix.NewDense(svLen, rv)
	if err != nil {
		return nil, fmt.Errorf("NewBaseMachine: %w", err)
	}

	return &BaseMachine{
		nComponents: nComponents,
		nFeatures:   svLen / nComponents,
		mean:        append([]float64(nil), mean...),
		variance:    append([]float64(nil), variance...),
		u:           u,
		v:           v,
		d:           make([]float64, svLen),
	}, nil
}

// Components is C, the number of UBM components.
func (b *BaseMachine) Components() int { return b.nComponents }

// Features is D, the feature dimension of one component.
func (b *BaseMachine) Features() int { return b.nFeatures }

// SupervectorLength is C·D.
func (b *BaseMachine) SupervectorLength() int { return len(b.mean) }

// RankU is the number of eigenchannels.
func (b *BaseMachine) RankU() int { return b.u.Cols() }

// RankV is the number of eigenvoices.
func (b *BaseMachine) RankV() int { return b.v.Cols() }

// Mean returns a copy of the UBM mean supervector.
func (b *BaseMachine) Mean() []float64 { return append([]float64(nil), b.mean...) }

// Variance returns a copy of the UBM variance supervector.
func (b *BaseMachine) Variance() []float64 { return append([]float64(nil), b.variance...) }

// U returns the eigenchannel matrix. It is owned by the machine.
func (b *BaseMachine) U() *matrix.Dense { return b.u }

// V returns the eigenvoice matrix. It is owned by the machine.
func (b *BaseMachine) V() *matrix.Dense { return b.v }

// D returns the residual diagonal. It is owned by the machine.
func (b *BaseMachine) D() []float64 { return b.d }

// SetU copies u into the machine; u must be C·D × ru.
func (b *BaseMachine) SetU(u *matrix.Dense) error {
	if err := b.checkSubspace("U", u, b.u); err != nil {
		return err
	}

	return b.u.CopyFrom(u)
}

// SetV copies v into the machine; v must be C·D × rv.
func (b *BaseMachine) SetV(v *matrix.Dense) error {
	if err := b.checkSubspace("V", v, b.v); err != nil {
		return err
	}

	return b.v.CopyFrom(v)
}

// SetD copies d into the machine; d must have length C·D.
func (b *BaseMachine) SetD(d []float64) error {
	if len(d) != len(b.d) {
		return fmt.Errorf("SetD: %w", shapeErrorf("len(d)", len(d), len(b.d)))
	}
	copy(b.d, d)

	return nil
}

func (b *BaseMachine) checkSubspace(name string, got, want *matrix.Dense) error {
	if got == nil {
		return fmt.Errorf("Set%s: %w", name, matrix.ErrNilMatrix)
	}
	if got.Rows() != want.Rows() {
		return fmt.Errorf("Set%s: %w", name, shapeErrorf(name+" rows", got.Rows(), want.Rows()))
	}
	if got.Cols() != want.Cols() {
		return fmt.Errorf("Set%s: %w", name, shapeErrorf(name+" cols", got.Cols(), want.Cols()))
	}

	return nil
}

// component maps a supervector index to its UBM component.
func (b *BaseMachine) component(k int) int { return k / b.nFeatures }

// Supervector returns m + V·y + D·z, the mean supervector of a speaker with
// factors y and z.
func (b *BaseMachine) Supervector(y, z []float64) ([]float64, error) {
	if len(y) != b.RankV() {
		return nil, fmt.Errorf("Supervector: %w", shapeErrorf("len(y)", len(y), b.RankV()))
	}
	if len(z) != len(b.d) {
		return nil, fmt.Errorf("Supervector: %w", shapeErrorf("len(z)", len(z), len(b.d)))
	}
	out, err := matrix.MatVec(b.v, y)
	if err != nil {
		return nil, fmt.Errorf("Supervector: %w", err)
	}
	for k := range out {
		out[k] += b.mean[k] + b.d[k]*z[k]
	}

	return out, nil
}
