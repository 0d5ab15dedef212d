// SPDX-License-Identifier: MIT

// Package jfa trains Joint Factor Analysis models of speaker and channel
// variability over GMM supervectors.
//
// 🚀 What is in here?
//
//   - BaseMachine: UBM mean m and variance Σ supervectors (C components of
//     dimension D) plus the subspaces U (eigenchannels), V (eigenvoices) and
//     the residual diagonal d.
//   - Trainer: alternating estimation of the latent factors x (per
//     session), y and z (per speaker) and of U, V, d.
//   - Enrol: factors of a new speaker against a trained machine.
//   - UpdateEigen: the per-component solve shared by every subspace update.
//
// A speaker supervector is modelled as
//
//	M_ih = m + V·y_i + U·x_ih + D·z_i
//
// for speaker i and session h.
//
// ⚙️ Usage:
//
//	base, _ := jfa.NewBaseMachine(mean, variance, 512, 50, 100)
//	tr, _ := jfa.NewTrainer(base, jfa.WithSeed(7))
//	tr.InitializeRandomUVD()
//	if err := tr.Train(ctx, stats, 10); err != nil { ... }
//
// One round runs x → U → y → V → z → d. Each pass is a barrier: speakers are
// solved concurrently inside a pass (WithWorkers), results are reduced in
// speaker order, so the outcome does not depend on the worker count.
//
// The single-step estimators of the JFA cookbook are the paired passes on a
// Trainer whose factors were set with SetSpeakerFactors and whose sums were
// precomputed:
//
//	UpdateX + UpdateU   estimate x and U
//	UpdateY + UpdateV   estimate y and V
//	UpdateZ + UpdateD   estimate z and d
//
// Progress is logged through glog at verbosity 1 (rounds) and 2 (stages).
package jfa
