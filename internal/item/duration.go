// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package item

import (
	"fmt"

	"nickandperla.net/itemscript/internal/value"
)

// AutoResponseDuration is how long keypress and mouseclick durations last
// when the experiment responds automatically.
const AutoResponseDuration = 500

// Strategy is the timing behavior that ends an item's presentation.
type Strategy int

const (
	NoOp             Strategy = iota // duration 0
	Sleep                            // sleep for Milliseconds
	CompensatedSleep                 // sleep for Milliseconds - Compensation
	WaitKeypress                     // wait for a key press
	WaitMouseclick                   // wait for a mouse click
)

// String returns the string representation of a strategy.
func (s Strategy) String() string {
	switch s {
	case NoOp:
		return "no-op"
	case Sleep:
		return "sleep"
	case CompensatedSleep:
		return "compensated-sleep"
	case WaitKeypress:
		return "wait-keypress"
	case WaitMouseclick:
		return "wait-mouseclick"
	}
	return "unknown"
}

// Duration is the timing decision made when an item is prepared.
type Duration struct {
	Strategy     Strategy
	Milliseconds int64
	Compensation int64
}

// Sleeps returns how long the strategy sleeps, or 0 if it does not sleep.
func (d Duration) Sleeps() int64 {
	switch d.Strategy {
	case Sleep:
		return d.Milliseconds
	case CompensatedSleep:
		return d.Milliseconds - d.Compensation
	}
	return 0
}

func (d Duration) String() string {
	switch d.Strategy {
	case Sleep, CompensatedSleep:
		return fmt.Sprintf("%s %d", d.Strategy, d.Sleeps())
	}
	return d.Strategy.String()
}

// Run executes the strategy.
func (d Duration) Run(clock Clock, device Device) error {
	switch d.Strategy {
	case Sleep, CompensatedSleep:
		if ms := d.Sleeps(); ms > 0 && clock != nil {
			clock.Sleep(ms)
		}
	case WaitKeypress:
		if device == nil {
			return fmt.Errorf("no input device to wait for a keypress")
		}
		return device.WaitKeypress()
	case WaitMouseclick:
		if device == nil {
			return fmt.Errorf("no input device to wait for a mouseclick")
		}
		return device.WaitMouseclick()
	}
	return nil
}

// PrepareDuration chooses the duration strategy from the 'duration' and
// optional 'compensation' variables and caches it until the next call.
func (it *Item) PrepareDuration() error {
	var comp value.Value
	if it.Has("compensation") {
		v, err := it.Get("compensation")
		if err != nil {
			return err
		}
		comp = v
	}
	dur, err := it.Get("duration")
	if err != nil {
		return err
	}
	auto := it.exp != nil && it.exp.AutoResponse()

	d, err := resolveDuration(dur, comp, auto)
	if err != nil {
		switch e := err.(type) {
		case *InvalidDurationError:
			e.Item = it.name
		case *InvalidCompensationError:
			e.Item = it.name
			e.ItemType = it.typ
		}
		return err
	}
	it.duration = &d
	return nil
}

// Duration returns the prepared duration strategy, or false if the item
// has not been prepared.
func (it *Item) Duration() (Duration, bool) {
	if it.duration == nil {
		return Duration{}, false
	}
	return *it.duration, true
}

// RunDuration executes the prepared duration strategy.
func (it *Item) RunDuration() error {
	if it.duration == nil {
		return fmt.Errorf("item '%s': %w", it.name, ErrNotPrepared)
	}
	var (
		clock  Clock
		device Device
	)
	if it.exp != nil {
		clock, device = it.exp.Clock(), it.exp.Device()
	}
	return it.duration.Run(clock, device)
}

// resolveDuration is the decision table behind PrepareDuration. comp is
// nil when no compensation is set.
func resolveDuration(dur, comp value.Value, auto bool) (Duration, error) {
	var compensation int64
	if comp != nil {
		n, ok := value.ToInt(comp)
		if !ok {
			return Duration{}, &InvalidCompensationError{Value: comp.String()}
		}
		compensation = n
	}

	if t, ok := dur.(value.Text); ok && (t == "keypress" || t == "mouseclick") {
		if auto {
			return Duration{Strategy: Sleep, Milliseconds: AutoResponseDuration}, nil
		}
		if t == "keypress" {
			return Duration{Strategy: WaitKeypress}, nil
		}
		return Duration{Strategy: WaitMouseclick}, nil
	}

	ms, ok := value.ToInt(dur)
	if !ok || ms < 0 {
		return Duration{}, &InvalidDurationError{Value: dur.String()}
	}
	switch {
	case ms == 0:
		return Duration{Strategy: NoOp}, nil
	case compensation != 0:
		return Duration{Strategy: CompensatedSleep, Milliseconds: ms, Compensation: compensation}, nil
	}
	return Duration{Strategy: Sleep, Milliseconds: ms}, nil
}
