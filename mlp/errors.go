// SPDX-License-Identifier: MIT

package mlp

import "errors"

var (
	// ErrIncompatibleNetwork is returned when a trainer is handed a machine whose
	// layer shapes differ from the ones it was built for, or a batch whose size
	// or width does not match.
	ErrIncompatibleNetwork = errors.New("mlp: incompatible network")

	// ErrInvalidShape is returned when a machine is built or fed with
	// non-positive or inconsistent layer sizes.
	ErrInvalidShape = errors.New("mlp: invalid shape")

	// ErrUnknownActivation is returned for an activation tag outside the
	// supported set.
	ErrUnknownActivation = errors.New("mlp: unknown activation")
)
