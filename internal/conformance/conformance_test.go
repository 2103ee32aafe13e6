package conformance

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	c := Parse("set x 1\n# EVAL: [x]\n# EXPECTED: 1\n  # MATCH: [x] = 1\n# EXPECTED: true\n# note: ignored\n# RUN: a b\n")

	want := []Step{{Eval, "[x]"}, {Match, "[x] = 1"}, {Run, "a b"}}
	if len(c.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), c.Steps)
	}
	for i, s := range want {
		if c.Steps[i] != s {
			t.Errorf("step %d: expected %v, got %v", i, s, c.Steps[i])
		}
	}
	if strings.Join(c.Expected, "|") != "1|true" {
		t.Errorf("unexpected expected lines: %v", c.Expected)
	}
	if c.ExpectsError() {
		t.Error("expected no error case")
	}
	if !Parse("# EXPECTED: Error: boom\n").ExpectsError() {
		t.Error("expected an error case")
	}
}

func TestCompare(t *testing.T) {
	if d := Compare([]string{"1", "Error: not set"}, []string{"1", "Error: variable 'x' is not set"}); len(d) != 0 {
		t.Errorf("expected a match, got %v", d)
	}
	if d := Compare([]string{"1"}, []string{"2"}); len(d) != 1 {
		t.Errorf("expected one mismatch, got %v", d)
	}
	if d := Compare([]string{"1"}, []string{"1", "extra"}); len(d) != 1 {
		t.Errorf("expected one mismatch, got %v", d)
	}
	if d := Compare([]string{"Error: x"}, []string{"x"}); len(d) != 1 {
		t.Errorf("expected an output without an error to mismatch, got %v", d)
	}
}

func TestConformance(t *testing.T) {
	files, err := FindFiles("testdata")
	if err != nil {
		t.Fatalf("failed to find conformance files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no conformance files found")
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), Ext)
		t.Run(name, func(t *testing.T) {
			c, err := ParseFile(file)
			if err != nil {
				t.Fatalf("failed to read %s: %v", file, err)
			}
			if len(c.Expected) == 0 {
				t.Fatalf("%s has no EXPECTED lines", file)
			}
			got := c.Execute(context.Background())
			for _, d := range Compare(c.Expected, got) {
				t.Error(d)
			}
		})
	}
}
