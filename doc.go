// SPDX-License-Identifier: MIT

// Package lvlearn is a small in-memory toolkit for training statistical
// speaker models and multi-layer perceptrons on top of a dense row-major
// matrix core.
//
// 🚀 What is lvlearn?
//
//	A deterministic, concurrency-aware library that brings together:
//		• Dense kernels: Mul/MulInto, Transpose, MatVec, LU, SPD solves
//		• Joint Factor Analysis: x/y/z factor passes, U/V/d re-estimation, ISV
//		• Enrolment of new speakers against a trained JFA machine
//		• MLP training: backprop with momentum, resilient backprop (RProp)
//
// ✨ Why choose lvlearn?
//
//   - Fail-fast: every kernel validates shapes and returns sentinel errors
//   - Reproducible: seeded initialisation, scheduling-independent reductions
//   - Cancellable: long training loops honour context.Context
//
// Under the hood, everything is organized under three subpackages:
//
//	matrix/  Dense type, linear algebra kernels and decompositions
//	jfa/     BaseMachine, Trainer, Enrol and UpdateEigen
//	mlp/     Machine, activations, BackPropTrainer and RPropTrainer
//
// Quick example:
//
//	tr, _ := jfa.NewTrainer(base, jfa.WithWorkers(4))
//	_ = tr.Train(ctx, stats, 10)
//
//	go get github.com/katalvlaran/lvlearn/jfa
package lvlearn
