// Package itemscript provides the public API for loading and running
// item scripts.
package itemscript

import (
	"log/slog"

	"nickandperla.net/itemscript/internal/experiment"
	"nickandperla.net/itemscript/internal/item"
	"nickandperla.net/itemscript/internal/sketchpad"
	"nickandperla.net/itemscript/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// Store persists experiment variables.
type Store = store.Store

// Clock provides time to items, in milliseconds.
type Clock = item.Clock

// Device waits for participant input.
type Device = item.Device

// Canvas paints sketchpad elements.
type Canvas = sketchpad.Canvas

// Element is a prepared sketchpad element.
type Element = sketchpad.Element

// Item is a defined item of the loaded script.
type Item = experiment.Item

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		r.storePath = path
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithAutoResponse replaces keypress and mouseclick waits with a short
// sleep.
func WithAutoResponse(auto bool) Option {
	return func(r *Runtime) {
		r.autoResponse = &auto
	}
}

// WithCanvasSize sets the width and height variables.
func WithCanvasSize(width, height int) Option {
	return func(r *Runtime) {
		r.width, r.height = &width, &height
	}
}

// WithRoundDecimals sets the default precision of rounded floats.
func WithRoundDecimals(n int) Option {
	return func(r *Runtime) {
		r.roundDecimals = &n
	}
}

// WithClock sets the clock items use.
func WithClock(c Clock) Option {
	return func(r *Runtime) {
		r.clock = c
	}
}

// WithDevice sets the input device.
func WithDevice(d Device) Option {
	return func(r *Runtime) {
		r.device = d
	}
}

// WithCanvas sets the canvas sketchpads draw on.
func WithCanvas(c Canvas) Option {
	return func(r *Runtime) {
		r.canvas = c
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithSettingsFile loads a YAML settings file. Explicit options take
// precedence over the file.
func WithSettingsFile(path string) Option {
	return func(r *Runtime) {
		r.settingsPath = path
	}
}

// WithPrelude sets a custom prelude script to be loaded on startup.
// If not set, DefaultPrelude is used.
func WithPrelude(script string) Option {
	return func(r *Runtime) {
		r.prelude = script
	}
}

// WithNoPrelude disables loading the prelude.
func WithNoPrelude() Option {
	return func(r *Runtime) {
		r.noPrelude = true
	}
}
