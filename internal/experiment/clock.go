// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package experiment

import (
	"errors"
	"time"
)

// ErrNoDevice is returned when an item waits for input and the experiment
// has no input device.
var ErrNoDevice = errors.New("no input device")

// realClock measures milliseconds since the experiment was created.
type realClock struct {
	start time.Time
}

func newRealClock() *realClock {
	return &realClock{start: time.Now()}
}

func (c *realClock) Time() int64 {
	return time.Since(c.start).Milliseconds()
}

func (c *realClock) Sleep(ms int64) {
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}

type noDevice struct{}

func (noDevice) WaitKeypress() error   { return ErrNoDevice }
func (noDevice) WaitMouseclick() error { return ErrNoDevice }
