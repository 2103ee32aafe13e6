package itemscript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/itemscript/internal/experiment"
	"nickandperla.net/itemscript/internal/item"
)

type stepClock struct {
	now   int64
	slept []int64
}

func (c *stepClock) Time() int64 { return c.now }
func (c *stepClock) Sleep(ms int64) {
	c.slept = append(c.slept, ms)
	c.now += ms
}

type textCanvas struct {
	lines []string
}

func (c *textCanvas) Clear() error { c.lines = nil; return nil }
func (c *textCanvas) Show() error  { return nil }
func (c *textCanvas) Draw(e *Element) error {
	c.lines = append(c.lines, e.String())
	return nil
}

const trial = `set subject_nr 7

define sketchpad fixation
	set duration 250
	set label "subject [subject_nr]"
	draw textline 0 0 [label]

define sketchpad response
	set duration keypress
	draw fixdot 0 0 show_if="[subject_nr] = 7"
`

func newRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	r, err := New(append([]Option{WithMemoryStore()}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestEvalAndMatch(t *testing.T) {
	r := newRuntime(t)
	if err := r.LoadString(trial); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.Eval("", "subject [subject_nr] of [width]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "subject 7 of 1024" {
		t.Errorf("expected 'subject 7 of 1024', got '%s'", got)
	}

	got, err = r.Eval("fixation", "[label] for [duration] ms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "subject 7 for 250 ms" {
		t.Errorf("expected 'subject 7 for 250 ms', got '%s'", got)
	}

	ok, err := r.Match("response", "[duration] = keypress and [subject_nr] = 7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected the condition to match")
	}

	_, err = r.Eval("missing", "x")
	var ue *experiment.UnknownItemError
	if !errors.As(err, &ue) {
		t.Errorf("expected UnknownItemError, got %v", err)
	}

	_, err = r.Eval("", "[nope]")
	var uv *item.UnsetVariableError
	if !errors.As(err, &uv) {
		t.Errorf("expected UnsetVariableError, got %v", err)
	}
}

func TestSetGetUnset(t *testing.T) {
	r := newRuntime(t)
	r.Set("rt", "512.5")
	if got, err := r.Get("rt"); err != nil || got != "512.5" {
		t.Errorf("expected '512.5', got '%s' (%v)", got, err)
	}
	r.Unset("rt")
	if _, err := r.Get("rt"); err == nil {
		t.Error("expected an error after unset")
	}
	r.Unset("rt")
}

func TestRun(t *testing.T) {
	clock := &stepClock{now: 10}
	canvas := &textCanvas{}
	r := newRuntime(t, WithClock(clock), WithCanvas(canvas), WithAutoResponse(true), WithCanvasSize(800, 600))
	if err := r.LoadString(trial); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := r.Run(context.Background(), "fixation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(canvas.lines) != 1 || !strings.HasPrefix(canvas.lines[0], `draw textline x=0 y=0 text="[label]"`) {
		t.Errorf("unexpected canvas: %v", canvas.lines)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int64{250, 250, 500}; len(clock.slept) != 3 || clock.slept[2] != want[2] {
		t.Errorf("expected sleeps %v, got %v", want, clock.slept)
	}
	if got, _ := r.Get("count_fixation"); got != "1" {
		t.Errorf("expected count_fixation 1, got '%s'", got)
	}
	if got, _ := r.Get("time_response"); got != "510" {
		t.Errorf("expected time_response 510, got '%s'", got)
	}

	var names []string
	for _, it := range r.Items() {
		names = append(names, it.Name())
	}
	if strings.Join(names, ",") != "fixation,response" {
		t.Errorf("unexpected items: %v", names)
	}
}

func TestPrepare(t *testing.T) {
	r := newRuntime(t)
	if err := r.LoadString("define sketchpad bad\n\tset duration soon\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Prepare("bad")
	var de *item.InvalidDurationError
	if !errors.As(err, &de) {
		t.Errorf("expected InvalidDurationError, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trial.txt")
	if err := os.WriteFile(path, []byte(trial), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := newRuntime(t)
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Items()) != 2 {
		t.Errorf("expected 2 items, got %d", len(r.Items()))
	}
	if !strings.Contains(r.Script(), "define sketchpad response\n") {
		t.Errorf("unexpected script:\n%s", r.Script())
	}

	bad := filepath.Join(t.TempDir(), "bad.txt")
	os.WriteFile(bad, []byte("launch\n"), 0o644)
	err := r.LoadFile(bad)
	var de *experiment.DefineError
	if !errors.As(err, &de) || !strings.Contains(err.Error(), bad) {
		t.Errorf("expected DefineError naming the file, got %v", err)
	}
}

func TestSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	data := "width: 1280\nheight: 1024\nround_decimals: 1\nvariables:\n  condition: incongruent\n  subject_nr: 3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := newRuntime(t, WithSettingsFile(path), WithCanvasSize(640, 480))
	if got, _ := r.Get("width"); got != "640" {
		t.Errorf("expected the explicit width 640, got '%s'", got)
	}
	if got, _ := r.Get("condition"); got != "incongruent" {
		t.Errorf("expected condition 'incongruent', got '%s'", got)
	}
	if got, _ := r.Get("subject_nr"); got != "3" {
		t.Errorf("expected the settings to override the prelude, got '%s'", got)
	}

	if _, err := New(WithSettingsFile(filepath.Join(dir, "missing.yaml"))); err == nil {
		t.Error("expected an error for a missing settings file")
	}
}

func TestSQLitePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.db")

	r, err := New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Set("block", "4")
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err = New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()
	if got, err := r.Get("block"); err != nil || got != "4" {
		t.Errorf("expected persisted block 4, got '%s' (%v)", got, err)
	}
}
