// SPDX-License-Identifier: MIT

package mlp

import "math"

// Activation selects the non-linearity applied after every layer.
type Activation int

const (
	// Linear is the identity, f(x) = x.
	Linear Activation = iota
	// Tanh is the hyperbolic tangent.
	Tanh
	// Logistic is 1/(1+e^-x).
	Logistic
)

// activationFuncs is the forward/backward pair behind one Activation tag.
// backward takes the layer OUTPUT y = forward(x).
type activationFuncs struct {
	name     string
	forward  func(x float64) float64
	backward func(y float64) float64
}

var activations = map[Activation]activationFuncs{
	Linear: {
		name:     "linear",
		forward:  func(x float64) float64 { return x },
		backward: func(float64) float64 { return 1 },
	},
	Tanh: {
		name:     "tanh",
		forward:  math.Tanh,
		backward: func(y float64) float64 { return 1 - y*y },
	},
	Logistic: {
		name:     "logistic",
		forward:  func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		backward: func(y float64) float64 { return y * (1 - y) },
	},
}

// Valid reports whether a is a supported activation.
func (a Activation) Valid() bool {
	_, ok := activations[a]
	return ok
}

// Forward evaluates the activation at x.
func (a Activation) Forward(x float64) float64 { return activations[a].forward(x) }

// Backward evaluates the derivative in terms of the activation output y.
func (a Activation) Backward(y float64) float64 { return activations[a].backward(y) }

// String implements fmt.Stringer.
func (a Activation) String() string {
	if f, ok := activations[a]; ok {
		return f.name
	}

	return "unknown"
}

// apply overwrites xs with forward(xs).
func (a Activation) apply(xs []float64) {
	f := activations[a].forward
	for i, x := range xs {
		xs[i] = f(x)
	}
}
