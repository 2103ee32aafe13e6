// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package experiment implements the experiment: the shared variable store
// items fall back to, the items themselves and the loop that runs them.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"nickandperla.net/itemscript/internal/item"
	"nickandperla.net/itemscript/internal/sketchpad"
	"nickandperla.net/itemscript/internal/store"
	"nickandperla.net/itemscript/internal/value"
	"nickandperla.net/itemscript/internal/vars"
)

// Type is the type tag of the experiment itself.
const Type = "experiment"

// Defaults for the display variables.
const (
	DefaultWidth      = 1024
	DefaultHeight     = 768
	DefaultForeground = "white"
	DefaultBackground = "black"
)

// Item is a runnable unit of the experiment.
type Item interface {
	Name() string
	Type() string
	Prepare() error
	Run() error
	String() string
}

// Constructor creates an item of a registered type from its definition.
type Constructor func(name string, exp *Experiment, definition string) (Item, error)

// Experiment owns the shared variable store and the items.
type Experiment struct {
	vars    *vars.Store
	root    *item.Item
	running atomic.Bool
	auto    atomic.Bool

	clock         item.Clock
	device        item.Device
	canvas        sketchpad.Canvas
	logger        *slog.Logger
	roundDecimals int

	mu           sync.RWMutex
	items        map[string]Item
	order        []string
	constructors map[string]Constructor
}

// Option configures an Experiment.
type Option func(*Experiment)

// WithClock sets the clock items use for onsets and sleeps.
func WithClock(c item.Clock) Option {
	return func(e *Experiment) { e.clock = c }
}

// WithDevice sets the device items wait on for responses.
func WithDevice(d item.Device) Option {
	return func(e *Experiment) { e.device = d }
}

// WithCanvas sets the canvas sketchpads draw on.
func WithCanvas(c sketchpad.Canvas) Option {
	return func(e *Experiment) { e.canvas = c }
}

// WithLogger sets the logger for item lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithAutoResponse replaces keypress and mouseclick waits with a short
// sleep.
func WithAutoResponse(auto bool) Option {
	return func(e *Experiment) { e.auto.Store(auto) }
}

// WithRoundDecimals sets the default precision of rounded floats.
func WithRoundDecimals(n int) Option {
	return func(e *Experiment) { e.roundDecimals = n }
}

// WithItemType registers a constructor for an item type.
func WithItemType(typ string, c Constructor) Option {
	return func(e *Experiment) { e.constructors[typ] = c }
}

// New creates an experiment with the default display variables.
func New(opts ...Option) *Experiment {
	e := &Experiment{
		vars:          vars.New(),
		clock:         newRealClock(),
		device:        noDevice{},
		logger:        slog.New(slog.DiscardHandler),
		roundDecimals: item.DefaultRoundDecimals,
		items:         make(map[string]Item),
		constructors: map[string]Constructor{
			sketchpad.Type: newSketchpad,
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.vars.Set("width", value.Int(DefaultWidth))
	e.vars.Set("height", value.Int(DefaultHeight))
	e.vars.Set("foreground", value.Text(DefaultForeground))
	e.vars.Set("background", value.Text(DefaultBackground))

	e.root, _ = item.New(Type, Type, e, "")
	e.root.SetRoundDecimals(e.roundDecimals)
	return e
}

func newSketchpad(name string, e *Experiment, definition string) (Item, error) {
	s, err := sketchpad.New(name, e, e.canvas, definition)
	if err != nil {
		return nil, err
	}
	s.SetRoundDecimals(e.roundDecimals)
	return s, nil
}

func newGeneric(typ string) Constructor {
	return func(name string, e *Experiment, definition string) (Item, error) {
		it, err := item.New(name, typ, e, definition)
		if err != nil {
			return nil, err
		}
		it.SetRoundDecimals(e.roundDecimals)
		return it, nil
	}
}

// Vars returns the shared variable store.
func (e *Experiment) Vars() *vars.Store { return e.vars }

// Running reports whether the experiment is running items.
func (e *Experiment) Running() bool { return e.running.Load() }

// SetRunning marks the experiment as running or stopped.
func (e *Experiment) SetRunning(running bool) { e.running.Store(running) }

// AutoResponse reports whether response waits are simulated.
func (e *Experiment) AutoResponse() bool { return e.auto.Load() }

// SetAutoResponse turns simulated responses on or off.
func (e *Experiment) SetAutoResponse(auto bool) { e.auto.Store(auto) }

// Clock returns the clock items time their onsets and sleeps with.
func (e *Experiment) Clock() item.Clock { return e.clock }

// Device returns the device items wait on for responses.
func (e *Experiment) Device() item.Device { return e.device }

// Canvas returns the canvas sketchpads draw on, or nil.
func (e *Experiment) Canvas() sketchpad.Canvas { return e.canvas }

// Logger returns the logger for item lifecycle events.
func (e *Experiment) Logger() *slog.Logger { return e.logger }

// Set binds an experiment variable.
func (e *Experiment) Set(name string, v value.Value) {
	e.vars.Set(name, item.Sanitize(v))
}

// Unset removes an experiment variable.
func (e *Experiment) Unset(name string) {
	e.vars.Delete(name)
}

// Has reports whether an experiment variable is bound.
func (e *Experiment) Has(name string) bool {
	return e.vars.Has(name)
}

// Get returns an experiment variable.
func (e *Experiment) Get(name string) (value.Value, error) {
	return e.root.Get(name)
}

// EvalText interpolates text against the experiment variables.
func (e *Experiment) EvalText(text string, roundFloats bool) (value.Value, error) {
	return e.root.EvalText(text, roundFloats)
}

// Match evaluates a condition against the experiment variables.
func (e *Experiment) Match(expr string) (bool, error) {
	return e.root.Match(expr)
}

// AddItem creates an item of type typ and adds it, replacing any item with
// the same name. Types without a registered constructor give generic items.
func (e *Experiment) AddItem(typ, name, definition string) (Item, error) {
	e.mu.RLock()
	c, ok := e.constructors[typ]
	e.mu.RUnlock()
	if !ok {
		c = newGeneric(typ)
	}

	it, err := c(name, e, definition)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if _, exists := e.items[name]; !exists {
		e.order = append(e.order, name)
	}
	e.items[name] = it
	e.mu.Unlock()

	e.logger.Debug("defined item", "item", name, "type", it.Type())
	return it, nil
}

// Item returns the item with the given name.
func (e *Experiment) Item(name string) (Item, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	it, ok := e.items[name]
	return it, ok
}

// Items returns the items in the order they were defined.
func (e *Experiment) Items() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Item, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.items[name])
	}
	return out
}

func (e *Experiment) lookupItem(name string) (Item, error) {
	it, ok := e.Item(name)
	if !ok {
		return nil, &UnknownItemError{Name: name}
	}
	return it, nil
}

// Prepare prepares the named item.
func (e *Experiment) Prepare(name string) error {
	it, err := e.lookupItem(name)
	if err != nil {
		return err
	}
	e.logger.Debug("preparing item", "item", name, "type", it.Type())
	if err := it.Prepare(); err != nil {
		return fmt.Errorf("preparing '%s': %w", name, err)
	}
	return nil
}

// RunItem runs the named item. It must have been prepared.
func (e *Experiment) RunItem(name string) error {
	it, err := e.lookupItem(name)
	if err != nil {
		return err
	}
	e.logger.Debug("running item", "item", name, "type", it.Type())
	if err := it.Run(); err != nil {
		return fmt.Errorf("running '%s': %w", name, err)
	}
	return nil
}

// Run prepares and runs the named items in order, or every item when no
// names are given. The experiment is marked running for the duration.
func (e *Experiment) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		e.mu.RLock()
		names = append(names, e.order...)
		e.mu.RUnlock()
	}

	e.SetRunning(true)
	defer e.SetRunning(false)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Prepare(name); err != nil {
			return err
		}
		if err := e.RunItem(name); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the experiment variables to s.
func (e *Experiment) Save(s store.Store) error {
	var saved []store.Variable
	e.vars.Range(func(name string, v value.Value) bool {
		saved = append(saved, store.Variable{Name: name, Value: v})
		return true
	})
	if err := s.Replace(saved); err != nil {
		return fmt.Errorf("saving variables: %w", err)
	}
	e.logger.Debug("saved variables", "count", len(saved))
	return nil
}

// Load sets experiment variables from the values in s.
func (e *Experiment) Load(s store.Store) error {
	names, err := s.Names()
	if err != nil {
		return fmt.Errorf("loading variables: %w", err)
	}
	for _, name := range names {
		v, err := s.Get(name)
		if err != nil {
			return fmt.Errorf("loading '%s': %w", name, err)
		}
		if v != nil {
			e.vars.Set(name, v)
		}
	}
	e.logger.Debug("loaded variables", "count", len(names))
	return nil
}
