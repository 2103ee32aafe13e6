// Command itemscript loads item scripts, evaluates text and conditions
// against their variables and runs their items.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/itemscript/pkg/itemscript"
)

// task is the work requested on the command line.
type task struct {
	eval  string
	match string
	item  string
	run   []string // nil: no run; empty: every item
}

func (t task) empty() bool {
	return t.eval == "" && t.match == "" && t.run == nil
}

func main() {
	var (
		file     = flag.String("f", "", "Item script file")
		evalStr  = flag.String("e", "", "Interpolate text and print the result")
		matchStr = flag.String("m", "", "Evaluate a condition and print true or false")
		itemName = flag.String("item", "", "Item to evaluate -e and -m in (default: the experiment)")
		dbPath   = flag.String("db", "", "SQLite database that persists experiment variables")
		config   = flag.String("config", "", "YAML settings file")
		auto     = flag.Bool("auto", false, "Respond automatically to keypress and mouseclick durations")
		debug    = flag.Bool("debug", false, "Log item lifecycle events")
		watch    = flag.Bool("watch", false, "Reload the script file and repeat the task when it changes")
		runItems = flag.String("run", "", "Comma-separated items to run, or 'all'")
	)

	flag.Parse()

	logger := newLogger(os.Stderr, *debug)

	// Build options
	opts := []itemscript.Option{
		itemscript.WithLogger(logger),
		itemscript.WithCanvas(newTextCanvas(os.Stdout)),
		itemscript.WithDevice(newKeyboard(os.Stdin)),
	}
	if *dbPath != "" {
		opts = append(opts, itemscript.WithSQLiteStore(*dbPath))
	}
	if *config != "" {
		opts = append(opts, itemscript.WithSettingsFile(*config))
	}
	// Only an explicit -auto overrides the settings file.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "auto" {
			opts = append(opts, itemscript.WithAutoResponse(*auto))
		}
	})

	runtime, err := itemscript.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := run(runtime, *file, task{
		eval:  *evalStr,
		match: *matchStr,
		item:  *itemName,
		run:   parseRun(*runItems),
	}, *watch, logger)

	if err := runtime.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving variables: %v\n", err)
		code = 1
	}
	os.Exit(code)
}

func run(runtime *itemscript.Runtime, file string, t task, watch bool, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Step 1: Load file if specified
	if file != "" {
		if err := runtime.LoadFile(file); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading file: %v\n", err)
			return 1
		}
	}

	// Step 2: Perform the requested task, or fall through to the REPL
	switch {
	case watch && file != "":
		if err := t.do(ctx, runtime, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		err := watchFile(ctx, file, logger, func() error {
			if err := runtime.LoadFile(file); err != nil {
				return err
			}
			return t.do(ctx, runtime, os.Stdout)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", file, err)
			return 1
		}

	case !t.empty():
		if err := t.do(ctx, runtime, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

	case file != "":
		// Script loaded and checked, nothing else to do

	case !term.IsTerminal(int(os.Stdin.Fd())):
		// Piped commands
		if !runBasicREPL(runtime, os.Stdin, os.Stdout, "") {
			return 1
		}

	default:
		runREPL(runtime)
	}
	return 0
}

// do performs the task: -e, then -m, then -run.
func (t task) do(ctx context.Context, runtime *itemscript.Runtime, w io.Writer) error {
	if t.eval != "" {
		result, err := runtime.Eval(t.item, t.eval)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, result)
	}
	if t.match != "" {
		ok, err := runtime.Match(t.item, t.match)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, ok)
	}
	if t.run != nil {
		if err := runtime.Run(ctx, t.run...); err != nil {
			return err
		}
	}
	return nil
}

// parseRun splits the -run flag. "all" selects every item.
func parseRun(s string) []string {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return nil
	case "all":
		return []string{}
	}
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
