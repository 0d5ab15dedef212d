// SPDX-License-Identifier: MIT

// Package mlp trains multi-layer perceptrons with batch gradient methods.
//
// 🚀 What is in here?
//
//   - Machine: ordered weight matrices W[k] (units(k) × units(k+1)),
//     bias vectors B[k] and one activation kind for all layers.
//   - BackPropTrainer: plain back-propagation with momentum.
//   - RPropTrainer: resilient back-propagation (Riedmiller & Braun, 1993).
//
// ⚙️ Usage:
//
//	m, _ := mlp.NewMachine(4, 3, 1)
//	m.SetActivation(mlp.Tanh)
//	m.Randomize(rand.New(rand.NewSource(1)), -0.1, 0.1)
//
//	tr, _ := mlp.NewBackPropTrainer(m, 50, mlp.WithLearningRate(0.1), mlp.WithMomentum(0.9))
//	for epoch := 0; epoch < 100; epoch++ {
//	    if err := tr.Train(m, input, target); err != nil { ... }
//	}
//
// Activation derivatives are always evaluated from the layer output y, never
// from the pre-activation value: tanh' = 1-y², logistic' = y(1-y), linear' = 1.
//
// Trainers are deterministic: identical machines, batches and options yield
// bit-identical weights. Trainers are not safe for concurrent use.
package mlp
