// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package conformance runs item scripts annotated with expected results.
//
// A case is a script whose comment lines carry directives:
//
//	# EVAL: <text>        interpolate text in the experiment
//	# MATCH: <condition>  evaluate a condition in the experiment
//	# PREPARE: <item>     prepare one item
//	# RUN: <item>...      prepare and run items
//	# EXPECTED: <line>    one expected output line
//
// Directives run in file order after the script is loaded. EVAL and MATCH
// each produce one output line. An expected line of the form
// 'Error: <text>' matches any error whose message contains text; the case
// stops at the first error.
package conformance

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nickandperla.net/itemscript/pkg/itemscript"
)

// Directive kinds.
const (
	Eval    = "EVAL"
	Match   = "MATCH"
	Prepare = "PREPARE"
	Run     = "RUN"
)

// Ext is the file extension of conformance scripts.
const Ext = ".itemscript"

// Step is one directive to perform.
type Step struct {
	Kind string
	Text string
}

// Case is a parsed conformance file.
type Case struct {
	Path     string
	Script   string
	Steps    []Step
	Expected []string
}

// ExpectsError reports whether any expected line is an error.
func (c *Case) ExpectsError() bool {
	for _, e := range c.Expected {
		if strings.HasPrefix(e, "Error:") {
			return true
		}
	}
	return false
}

// ParseFile reads a conformance file.
func ParseFile(path string) (*Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Parse(string(content))
	c.Path = path
	return c, nil
}

// Parse extracts the directives from a conformance script. The directives
// are comments, so the script is kept whole.
func Parse(content string) *Case {
	c := &Case{Script: content}
	for _, line := range strings.Split(content, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "# ")
		if !ok {
			continue
		}
		kind, text, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		text = strings.TrimPrefix(text, " ")
		switch kind {
		case Eval, Match, Prepare, Run:
			c.Steps = append(c.Steps, Step{Kind: kind, Text: text})
		case "EXPECTED":
			c.Expected = append(c.Expected, text)
		}
	}
	return c
}

// instantClock advances time instead of sleeping.
type instantClock struct {
	now int64
}

func (c *instantClock) Time() int64    { return c.now }
func (c *instantClock) Sleep(ms int64) { c.now += ms }

// Execute loads the case into a fresh runtime and returns its output
// lines. An error ends the output with an 'Error: <message>' line.
func (c *Case) Execute(ctx context.Context) []string {
	r, err := itemscript.New(
		itemscript.WithMemoryStore(),
		itemscript.WithAutoResponse(true),
		itemscript.WithClock(&instantClock{}),
		itemscript.WithNoPrelude(),
	)
	if err != nil {
		return []string{errorLine(err)}
	}
	defer r.Close()

	if err := r.LoadString(c.Script); err != nil {
		return []string{errorLine(err)}
	}

	var out []string
	for _, step := range c.Steps {
		line, err := c.step(ctx, r, step)
		if err != nil {
			return append(out, errorLine(err))
		}
		if step.Kind == Eval || step.Kind == Match {
			out = append(out, line)
		}
	}
	return out
}

func (c *Case) step(ctx context.Context, r *itemscript.Runtime, s Step) (string, error) {
	switch s.Kind {
	case Eval:
		return r.Eval("", s.Text)
	case Match:
		ok, err := r.Match("", s.Text)
		return fmt.Sprint(ok), err
	case Prepare:
		return "", r.Prepare(strings.TrimSpace(s.Text))
	case Run:
		return "", r.Run(ctx, strings.Fields(s.Text)...)
	}
	return "", fmt.Errorf("unknown directive %q", s.Kind)
}

// FindFiles returns the conformance scripts under dir, sorted.
func FindFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), Ext) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func errorLine(err error) string {
	return "Error: " + err.Error()
}

// Compare checks output against the expected lines and returns the
// mismatches.
func Compare(expected, got []string) []string {
	var diffs []string
	for i := 0; i < len(expected) || i < len(got); i++ {
		var e, g string
		if i < len(expected) {
			e = expected[i]
		}
		if i < len(got) {
			g = got[i]
		}
		if !lineMatches(e, g) {
			diffs = append(diffs, fmt.Sprintf("line %d: expected %q, got %q", i+1, e, g))
		}
	}
	return diffs
}

func lineMatches(expected, got string) bool {
	if want, ok := strings.CutPrefix(expected, "Error:"); ok {
		msg, isErr := strings.CutPrefix(got, "Error:")
		return isErr && strings.Contains(msg, strings.TrimSpace(want))
	}
	return expected == got
}
