// SPDX-License-Identifier: MIT

package jfa

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

// Client is an enrolled speaker: its factors against a frozen BaseMachine
// and the resulting model mean supervector m + V·y + D·z.
type Client struct {
	x    *matrix.Dense
	y, z []float64
	mean []float64
}

// X returns a copy of the channel factors of the enrolment sessions.
func (c *Client) X() *matrix.Dense { return c.x.Clone() }

// Y returns a copy of the speaker factors.
func (c *Client) Y() []float64 { return append([]float64(nil), c.y...) }

// Z returns a copy of the residual speaker factors.
func (c *Client) Z() []float64 { return append([]float64(nil), c.z...) }

// Mean returns a copy of the client mean supervector.
func (c *Client) Mean() []float64 { return append([]float64(nil), c.mean...) }

// Enrol estimates the factors of a new speaker from its sessions with U, V
// and d frozen: nIter rounds of x, y and z passes starting from zero factors.
// base is not modified.
//
// Errors: those of SetStatistics and of the factor passes, and ctx errors
// checked between passes.
func Enrol(ctx context.Context, base *BaseMachine, sessions []Stats, nIter int, opts ...Option) (*Client, error) {
	if nIter < 0 {
		return nil, fmt.Errorf("Enrol: %d iterations: %w", nIter, ErrInvalidModel)
	}
	t, err := NewTrainer(base, opts...)
	if err != nil {
		return nil, fmt.Errorf("Enrol: %w", err)
	}
	if err = t.prepare([][]Stats{sessions}); err != nil {
		return nil, fmt.Errorf("Enrol: %w", err)
	}
	schedule := []stage{
		{"x", t.updateX},
		{"y", t.updateY},
		{"z", t.updateZ},
	}
	if err = t.run(ctx, "Enrol", nIter, schedule); err != nil {
		return nil, err
	}

	mean, err := base.Supervector(t.y[0], t.z[0])
	if err != nil {
		return nil, fmt.Errorf("Enrol: %w", err)
	}

	return &Client{x: t.x[0], y: t.y[0], z: t.z[0], mean: mean}, nil
}
