package itemscript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"nickandperla.net/itemscript/internal/experiment"
	"nickandperla.net/itemscript/internal/settings"
	"nickandperla.net/itemscript/internal/store"
	"nickandperla.net/itemscript/internal/value"
)

// Runtime loads an item script into an experiment and evaluates text and
// conditions against it.
type Runtime struct {
	exp   *experiment.Experiment
	store store.Store

	storePath     string
	settingsPath  string
	autoResponse  *bool
	width, height *int
	roundDecimals *int
	clock         Clock
	device        Device
	canvas        Canvas
	logger        *slog.Logger
	prelude       string // Custom prelude (if empty, uses DefaultPrelude)
	noPrelude     bool
}

// New creates a runtime with the given options. Variables are applied in
// this order, later ones winning: defaults, prelude, persisted store,
// settings file, explicit options.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}

	var cfg *settings.Settings
	if r.settingsPath != "" {
		var err error
		if cfg, err = settings.Load(r.settingsPath); err != nil {
			return nil, err
		}
	}

	if r.store == nil {
		path := r.storePath
		if path == "" && cfg != nil {
			path = cfg.Database
		}
		if path != "" {
			s, err := store.NewSQLite(path)
			if err != nil {
				return nil, err
			}
			r.store = s
		}
	}

	expOpts := []experiment.Option{experiment.WithLogger(r.logger)}
	if r.clock != nil {
		expOpts = append(expOpts, experiment.WithClock(r.clock))
	}
	if r.device != nil {
		expOpts = append(expOpts, experiment.WithDevice(r.device))
	}
	if r.canvas != nil {
		expOpts = append(expOpts, experiment.WithCanvas(r.canvas))
	}
	if auto := r.autoResponse; auto != nil {
		expOpts = append(expOpts, experiment.WithAutoResponse(*auto))
	} else if cfg != nil && cfg.AutoResponse != nil {
		expOpts = append(expOpts, experiment.WithAutoResponse(*cfg.AutoResponse))
	}
	if n := r.roundDecimals; n != nil {
		expOpts = append(expOpts, experiment.WithRoundDecimals(*n))
	} else if cfg != nil && cfg.RoundDecimals != nil {
		expOpts = append(expOpts, experiment.WithRoundDecimals(*cfg.RoundDecimals))
	}
	r.exp = experiment.New(expOpts...)

	if err := r.init(cfg); err != nil {
		if r.store != nil {
			r.store.Close()
		}
		return nil, err
	}
	return r, nil
}

func (r *Runtime) init(cfg *settings.Settings) error {
	if !r.noPrelude {
		prelude := r.prelude
		if prelude == "" {
			prelude = DefaultPrelude
		}
		if err := r.exp.FromString(prelude); err != nil {
			return fmt.Errorf("prelude: %w", err)
		}
	}

	if r.store != nil {
		if err := r.exp.Load(r.store); err != nil {
			return err
		}
	}

	if cfg != nil {
		if cfg.Width != nil {
			r.exp.Set("width", value.Int(*cfg.Width))
		}
		if cfg.Height != nil {
			r.exp.Set("height", value.Int(*cfg.Height))
		}
		if cfg.Foreground != nil {
			r.exp.Set("foreground", value.Text(*cfg.Foreground))
		}
		if cfg.Background != nil {
			r.exp.Set("background", value.Text(*cfg.Background))
		}
		for _, v := range cfg.Variables {
			r.exp.Set(v.Name, v.Value)
		}
	}

	if r.width != nil {
		r.exp.Set("width", value.Int(*r.width))
	}
	if r.height != nil {
		r.exp.Set("height", value.Int(*r.height))
	}
	return nil
}

// LoadString loads an item script.
func (r *Runtime) LoadString(script string) error {
	return r.exp.FromString(script)
}

// LoadReader loads an item script from a reader.
func (r *Runtime) LoadReader(reader io.Reader) error {
	return r.exp.FromReader(reader)
}

// LoadFile loads an item script from a file.
func (r *Runtime) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.LoadReader(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Set binds an experiment variable. The raw text is typed as a script
// 'set' statement would type it.
func (r *Runtime) Set(name, raw string) {
	r.exp.Set(name, value.AutoType(raw))
}

// Unset removes an experiment variable.
func (r *Runtime) Unset(name string) {
	r.exp.Unset(name)
}

// Get returns the text form of an experiment variable.
func (r *Runtime) Get(name string) (string, error) {
	v, err := r.exp.Get(name)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Variables returns the experiment variable names in order.
func (r *Runtime) Variables() []string {
	return r.exp.Vars().Names()
}

type evaluator interface {
	EvalText(text string, roundFloats bool) (value.Value, error)
	Match(expr string) (bool, error)
}

// evaluatorFor returns the evaluator for an item name, or the experiment for "".
func (r *Runtime) evaluatorFor(itemName string) (evaluator, error) {
	if itemName == "" {
		return r.exp, nil
	}
	it, ok := r.exp.Item(itemName)
	if !ok {
		return nil, &experiment.UnknownItemError{Name: itemName}
	}
	ev, ok := it.(evaluator)
	if !ok {
		return nil, fmt.Errorf("item '%s' of type '%s' cannot evaluate text", itemName, it.Type())
	}
	return ev, nil
}

// Eval interpolates variables into text in the context of an item, or of
// the experiment if itemName is empty.
func (r *Runtime) Eval(itemName, text string) (string, error) {
	ev, err := r.evaluatorFor(itemName)
	if err != nil {
		return "", err
	}
	v, err := ev.EvalText(text, false)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Match evaluates a condition in the context of an item, or of the
// experiment if itemName is empty.
func (r *Runtime) Match(itemName, expr string) (bool, error) {
	ev, err := r.evaluatorFor(itemName)
	if err != nil {
		return false, err
	}
	return ev.Match(expr)
}

// Prepare prepares the named item.
func (r *Runtime) Prepare(name string) error {
	return r.exp.Prepare(name)
}

// Run prepares and runs the named items, or all items if none are named.
func (r *Runtime) Run(ctx context.Context, names ...string) error {
	return r.exp.Run(ctx, names...)
}

// Items returns the defined items in order.
func (r *Runtime) Items() []Item {
	return r.exp.Items()
}

// Script renders the loaded experiment as a script.
func (r *Runtime) Script() string {
	return r.exp.ToString()
}

// Save persists the experiment variables, if a store is configured.
func (r *Runtime) Save() error {
	if r.store == nil {
		return nil
	}
	return r.exp.Save(r.store)
}

// Close saves the variables and releases the store.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.exp.Save(r.store)
	if cerr := r.store.Close(); err == nil {
		err = cerr
	}
	return err
}
