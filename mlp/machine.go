// SPDX-License-Identifier: MIT

package mlp

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/lvlearn/matrix"
)

// Machine is a fully connected feed-forward network.
// Layer k maps units(k) inputs to units(k+1) outputs through W[k] and B[k].
type Machine struct {
	weights    []*matrix.Dense // W[k]: units(k) × units(k+1)
	biases     [][]float64     // B[k]: units(k+1)
	activation Activation
}

// NewMachine builds a zero-initialised network with the given layer sizes,
// input first, output last. At least two sizes are required. The activation
// defaults to Tanh.
func NewMachine(shape ...int) (*Machine, error) {
	if len(shape) < 2 {
		return nil, fmt.Errorf("NewMachine: %d layer sizes: %w", len(shape), ErrInvalidShape)
	}
	m := &Machine{
		weights:    make([]*matrix.Dense, len(shape)-1),
		biases:     make([][]float64, len(shape)-1),
		activation: Tanh,
	}
	for k := 0; k+1 < len(shape); k++ {
		w, err := matrix.NewDense(shape[k], shape[k+1])
		if err != nil {
			return nil, fmt.Errorf("NewMachine: layer %d (%d×%d): %w", k, shape[k], shape[k+1], ErrInvalidShape)
		}
		m.weights[k] = w
		m.biases[k] = make([]float64, shape[k+1])
	}

	return m, nil
}

// Shape returns the layer sizes, input first, or nil for a machine without
// layers (the zero value).
func (m *Machine) Shape() []int {
	if len(m.weights) == 0 {
		return nil
	}
	shape := make([]int, 0, len(m.weights)+1)
	shape = append(shape, m.weights[0].Rows())
	for _, w := range m.weights {
		shape = append(shape, w.Cols())
	}

	return shape
}

// InputSize is the width of the first layer, 0 without layers.
func (m *Machine) InputSize() int {
	if len(m.weights) == 0 {
		return 0
	}

	return m.weights[0].Rows()
}

// OutputSize is the width of the last layer, 0 without layers.
func (m *Machine) OutputSize() int {
	if len(m.weights) == 0 {
		return 0
	}

	return m.weights[len(m.weights)-1].Cols()
}

// Layers is the number of weight matrices.
func (m *Machine) Layers() int { return len(m.weights) }

// Weights returns the weight matrices. They are owned by the machine: writes
// through them change the network.
func (m *Machine) Weights() []*matrix.Dense { return m.weights }

// Biases returns the bias vectors, owned by the machine like Weights.
func (m *Machine) Biases() [][]float64 { return m.biases }

// SetWeights copies ws into the machine. Every matrix must keep its layer shape.
func (m *Machine) SetWeights(ws []*matrix.Dense) error {
	if len(ws) != len(m.weights) {
		return fmt.Errorf("SetWeights: %d matrices for %d layers: %w", len(ws), len(m.weights), ErrInvalidShape)
	}
	for k, w := range ws {
		if w == nil || w.Rows() != m.weights[k].Rows() || w.Cols() != m.weights[k].Cols() {
			return fmt.Errorf("SetWeights: layer %d: %w", k, ErrInvalidShape)
		}
	}
	for k, w := range ws {
		_ = m.weights[k].CopyFrom(w)
	}

	return nil
}

// SetBiases copies bs into the machine. Every vector must keep its layer width.
func (m *Machine) SetBiases(bs [][]float64) error {
	if len(bs) != len(m.biases) {
		return fmt.Errorf("SetBiases: %d vectors for %d layers: %w", len(bs), len(m.biases), ErrInvalidShape)
	}
	for k, b := range bs {
		if len(b) != len(m.biases[k]) {
			return fmt.Errorf("SetBiases: layer %d: %w", k, ErrInvalidShape)
		}
	}
	for k, b := range bs {
		copy(m.biases[k], b)
	}

	return nil
}

// FillBiases sets every bias of every layer to v.
func (m *Machine) FillBiases(v float64) {
	for _, b := range m.biases {
		for i := range b {
			b[i] = v
		}
	}
}

// Activation returns the activation kind shared by all layers.
func (m *Machine) Activation() Activation { return m.activation }

// SetActivation changes the activation kind.
func (m *Machine) SetActivation(a Activation) error {
	if !a.Valid() {
		return fmt.Errorf("SetActivation(%d): %w", int(a), ErrUnknownActivation)
	}
	m.activation = a

	return nil
}

// Randomize draws every weight and bias uniformly from [lower, upper).
func (m *Machine) Randomize(rng *rand.Rand, lower, upper float64) {
	span := upper - lower
	for k, w := range m.weights {
		raw := w.Raw()
		for i := range raw {
			raw[i] = lower + span*rng.Float64()
		}
		for i := range m.biases[k] {
			m.biases[k][i] = lower + span*rng.Float64()
		}
	}
}

// Clone returns a deep copy.
func (m *Machine) Clone() *Machine {
	out := &Machine{
		weights:    make([]*matrix.Dense, len(m.weights)),
		biases:     make([][]float64, len(m.biases)),
		activation: m.activation,
	}
	for k := range m.weights {
		out.weights[k] = m.weights[k].Clone()
		out.biases[k] = append([]float64(nil), m.biases[k]...)
	}

	return out
}

// Forward runs a batch (one sample per row) through the network and returns
// the output batch.
func (m *Machine) Forward(input *matrix.Dense) (*matrix.Dense, error) {
	if input == nil || input.Cols() != m.InputSize() {
		return nil, fmt.Errorf("Forward: %w", ErrInvalidShape)
	}
	out := input
	for k, w := range m.weights {
		next, err := matrix.Mul(out, w)
		if err != nil {
			return nil, fmt.Errorf("Forward: layer %d: %w", k, err)
		}
		addBias(next, m.biases[k])
		m.activation.apply(next.Raw())
		out = next
	}

	return out, nil
}

// addBias adds b to every row of o.
func addBias(o *matrix.Dense, b []float64) {
	for s := 0; s < o.Rows(); s++ {
		row := o.Row(s)
		for j := range row {
			row[j] += b[j]
		}
	}
}
