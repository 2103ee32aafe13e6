package experiment

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"nickandperla.net/itemscript/internal/item"
	"nickandperla.net/itemscript/internal/sketchpad"
	"nickandperla.net/itemscript/internal/store"
	"nickandperla.net/itemscript/internal/value"
)

type fakeClock struct {
	mu    sync.Mutex
	now   int64
	slept []int64
}

func (c *fakeClock) Time() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, ms)
	c.now += ms
}

type countingCanvas struct {
	frames int
	drawn  []string
}

func (c *countingCanvas) Clear() error { return nil }
func (c *countingCanvas) Show() error  { c.frames++; return nil }
func (c *countingCanvas) Draw(e *sketchpad.Element) error {
	c.drawn = append(c.drawn, e.Kind())
	return nil
}

const script = `# A single trial
set subject_nr 3
set greeting "hello world"

define sketchpad fixation
	set duration 500
	draw fixdot 0 0

define sketchpad target
	# shows the target
	set duration keypress
	set target_x [offset]

	draw circle [target_x] 0 20 fill=1
define logger log
	set auto_log yes
`

func newTestExperiment(t *testing.T, opts ...Option) (*Experiment, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	e := New(append([]Option{WithClock(clock)}, opts...)...)
	if err := e.FromString(script); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e, clock
}

func TestFromString(t *testing.T) {
	e, _ := newTestExperiment(t)

	if v, err := e.Get("subject_nr"); err != nil || !value.Equal(v, value.Int(3)) {
		t.Errorf("expected subject_nr 3, got %v (%v)", v, err)
	}
	if v, _ := e.Get("greeting"); v.String() != "hello world" {
		t.Errorf("expected greeting 'hello world', got '%s'", v)
	}
	if v, _ := e.Get("width"); !value.Equal(v, value.Int(DefaultWidth)) {
		t.Errorf("expected default width, got %v", v)
	}

	var names []string
	for _, it := range e.Items() {
		names = append(names, it.Name()+":"+it.Type())
	}
	if got := strings.Join(names, ","); got != "fixation:sketchpad,target:sketchpad,log:logger" {
		t.Errorf("unexpected items: %s", got)
	}

	it, ok := e.Item("target")
	if !ok {
		t.Fatal("expected item 'target'")
	}
	pad := it.(*sketchpad.Sketchpad)
	if got := pad.Definitions(); len(got) != 1 || got[0] != "draw circle [target_x] 0 20 fill=1" {
		t.Errorf("unexpected definitions: %v", got)
	}
	if got := pad.Comments(); len(got) != 1 || strings.TrimSpace(got[0]) != "shows the target" {
		t.Errorf("unexpected comments: %v", got)
	}

	generic := mustItem(t, e, "log").(*item.Item)
	if v, _ := generic.Get("auto_log"); v.String() != "yes" {
		t.Errorf("expected auto_log 'yes', got %v", v)
	}
}

func mustItem(t *testing.T, e *Experiment, name string) Item {
	t.Helper()
	it, ok := e.Item(name)
	if !ok {
		t.Fatalf("expected item '%s'", name)
	}
	return it
}

func TestFromStringErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		line   int
	}{
		{"stray statement", "set a 1\nrun fixation\n", 2},
		{"short define", "define sketchpad\n", 1},
		{"long define", "define sketchpad a b\n", 1},
		{"unbalanced quote", "define sketchpad \"a\n", 1},
	}
	for _, tt := range tests {
		err := New().FromString(tt.script)
		var de *DefineError
		if !errors.As(err, &de) {
			t.Errorf("%s: expected DefineError, got %v", tt.name, err)
			continue
		}
		if de.Line != tt.line {
			t.Errorf("%s: expected line %d, got %d", tt.name, tt.line, de.Line)
		}
	}

	err := New().FromString("set a\n")
	var se *item.ScriptError
	if !errors.As(err, &se) || se.Item != Type {
		t.Errorf("expected ScriptError for the experiment, got %v", err)
	}

	err = New().FromString("define sketchpad pad\n\tdraw\n\tlaunch\n")
	if !errors.As(err, &se) || se.Item != "pad" {
		t.Errorf("expected ScriptError for 'pad', got %v", err)
	}
}

func TestRun(t *testing.T) {
	canvas := &countingCanvas{}
	e, clock := newTestExperiment(t, WithCanvas(canvas), WithAutoResponse(true))
	e.Set("offset", value.Int(100))

	if err := e.Run(context.Background(), "fixation", "target", "log"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Running() {
		t.Error("expected the experiment to stop after the run")
	}
	if canvas.frames != 2 || strings.Join(canvas.drawn, ",") != "fixdot,circle" {
		t.Errorf("unexpected canvas use: %d frames, %v", canvas.frames, canvas.drawn)
	}
	if len(clock.slept) != 2 || clock.slept[0] != 500 || clock.slept[1] != item.AutoResponseDuration {
		t.Errorf("unexpected sleeps: %v", clock.slept)
	}
	if v, _ := e.Get("time_target"); !value.Equal(v, value.Int(500)) {
		t.Errorf("expected time_target 500, got %v", v)
	}
	if v, _ := e.Get("count_log"); !value.Equal(v, value.Int(0)) {
		t.Errorf("expected count_log 0, got %v", v)
	}

	pad := mustItem(t, e, "target").(*sketchpad.Sketchpad)
	if x, _ := pad.Elements()[0].Property("x"); !value.Equal(x, value.Int(100+DefaultWidth/2)) {
		t.Errorf("expected circle x %d, got %v", 100+DefaultWidth/2, x)
	}

	if err := e.Run(context.Background(), "fixation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := e.Get("count_fixation"); !value.Equal(v, value.Int(1)) {
		t.Errorf("expected count_fixation 1, got %v", v)
	}
}

func TestRunErrors(t *testing.T) {
	e, _ := newTestExperiment(t)

	err := e.Run(context.Background(), "missing")
	var ue *UnknownItemError
	if !errors.As(err, &ue) || ue.Name != "missing" {
		t.Errorf("expected UnknownItemError, got %v", err)
	}

	// keypress without auto response or device
	err = e.Run(context.Background(), "fixation", "target")
	var uv *item.UnsetVariableError
	if !errors.As(err, &uv) || uv.Name != "offset" {
		t.Errorf("expected UnsetVariableError for 'offset', got %v", err)
	}

	e.Set("offset", value.Int(0))
	if err := e.Run(context.Background(), "target"); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReferencesFollowOnlyWhileRunning(t *testing.T) {
	e := New()
	e.Set("a", value.Text("[b]"))
	e.Set("b", value.Int(7))

	v, err := e.Get("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "[b]" {
		t.Errorf("expected '[b]' while stopped, got '%s'", v)
	}

	e.SetRunning(true)
	defer e.SetRunning(false)
	if v, _ := e.Get("a"); !value.Equal(v, value.Int(7)) {
		t.Errorf("expected 7 while running, got %v", v)
	}
}

func TestEvalAndMatch(t *testing.T) {
	e := New(WithRoundDecimals(1))
	e.Set("rt", value.Float(512.345))

	v, err := e.EvalText("rt=[rt] on [width]x[height]", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "rt=512.3 on 1024x768" {
		t.Errorf("unexpected text: %s", v)
	}

	ok, err := e.Match("[foreground] = white and [background] = black")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected the default colors to match")
	}
}

func TestToStringRoundTrip(t *testing.T) {
	e, _ := newTestExperiment(t)
	text := e.ToString()
	if !strings.Contains(text, "set greeting \"hello world\"\n") {
		t.Errorf("expected greeting in output:\n%s", text)
	}
	if !strings.Contains(text, "define sketchpad target\n") {
		t.Errorf("expected target definition in output:\n%s", text)
	}

	again := New()
	if err := again.FromString(text); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, text)
	}
	if again.ToString() != text {
		t.Errorf("round trip changed the script:\n%s\nvs\n%s", text, again.ToString())
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.db")
	s, err := store.NewSQLite(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := New()
	e.Set("subject_nr", value.Int(12))
	e.Set("ratio", value.Float(0.75))
	e.Set("name", value.Text("alice"))
	if err := e.Save(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	s, err = store.NewSQLite(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	loaded := New()
	if err := loaded.Load(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, want := range map[string]value.Value{
		"subject_nr": value.Int(12),
		"ratio":      value.Float(0.75),
		"name":       value.Text("alice"),
	} {
		if v, err := loaded.Get(name); err != nil || !value.Equal(v, want) {
			t.Errorf("%s: expected %v, got %v (%v)", name, want, v, err)
		}
	}
	if got := loaded.Vars().Names(); got[0] != "width" || got[len(got)-1] != "name" {
		t.Errorf("unexpected variable order: %v", got)
	}

	// An unset variable is dropped on the next save.
	loaded.Unset("ratio")
	if err := loaded.Save(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, err := s.Get("ratio"); err != nil || v != nil {
		t.Errorf("expected ratio to be gone, got %v (%v)", v, err)
	}
}

func TestCustomItemType(t *testing.T) {
	var built []string
	e := New(WithItemType("feedback", func(name string, e *Experiment, def string) (Item, error) {
		built = append(built, name)
		return item.New(name, "feedback", e, def)
	}))
	if err := e.FromString("define feedback fb\n\tset duration 0\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(built) != 1 || built[0] != "fb" {
		t.Errorf("expected the custom constructor to build 'fb', got %v", built)
	}
}

func TestConcurrentVariables(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.Set("v", value.Int(int64(i*j)))
				e.Get("v")
				e.Has("v")
			}
		}(i)
	}
	wg.Wait()
	if !e.Has("v") {
		t.Error("expected 'v' to be set")
	}
}
