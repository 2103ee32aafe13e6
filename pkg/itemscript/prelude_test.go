package itemscript

import (
	"testing"
)

func TestPreludeDefaults(t *testing.T) {
	r := newRuntime(t)

	got, err := r.Get("subject_parity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "even" {
		t.Errorf("expected subject_parity 'even', got '%s'", got)
	}
}

func TestNoPreludeOption(t *testing.T) {
	r := newRuntime(t, WithNoPrelude())

	// Display defaults come from the experiment, not the prelude.
	if _, err := r.Get("width"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Get("subject_nr"); err == nil {
		t.Error("expected subject_nr to be unset without the prelude")
	}
}

func TestCustomPrelude(t *testing.T) {
	r := newRuntime(t, WithPrelude("set greeting hello\n"))

	got, err := r.Eval("", "[greeting] world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", got)
	}
	if _, err := r.Get("subject_parity"); err == nil {
		t.Error("expected the default prelude to be replaced")
	}
}

func TestBadPrelude(t *testing.T) {
	if _, err := New(WithMemoryStore(), WithPrelude("launch\n")); err == nil {
		t.Error("expected an error for an invalid prelude")
	}
}
