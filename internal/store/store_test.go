package store

import (
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/itemscript/internal/value"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	// Test Put and Get
	if err := s.Put("width", value.Int(1024)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put("ratio", value.Float(0.75)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put("greeting", value.Text("hello world")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get("width")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !value.Equal(got, value.Int(1024)) {
		t.Errorf("expected int 1024, got %v", got)
	}
	got, _ = s.Get("ratio")
	if !value.Equal(got, value.Float(0.75)) {
		t.Errorf("expected float 0.75, got %v", got)
	}

	// Overwrite keeps position
	if err := s.Put("width", value.Text("wide")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, _ = s.Get("width")
	if !value.Equal(got, value.Text("wide")) {
		t.Errorf("expected 'wide', got %v", got)
	}
	names, err := s.Names()
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if strings.Join(names, ",") != "width,ratio,greeting" {
		t.Errorf("unexpected names: %v", names)
	}

	// Test Delete
	if err := s.Delete("ratio"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err = s.Get("ratio")
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got '%s'", got)
	}
	if err := s.Delete("ratio"); err != nil {
		t.Errorf("Delete of absent name failed: %v", err)
	}

	// Replace drops names that are not given and takes the new order
	err = s.Replace([]Variable{
		{Name: "count_cue", Value: value.Int(3)},
		{Name: "width", Value: value.Float(640)},
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	names, _ = s.Names()
	if strings.Join(names, ",") != "count_cue,width" {
		t.Errorf("unexpected names after Replace: %v", names)
	}
	got, _ = s.Get("width")
	if !value.Equal(got, value.Int(640)) {
		t.Errorf("expected normalized int 640, got %v", got)
	}
	if got, _ = s.Get("greeting"); got != nil {
		t.Errorf("expected greeting to be gone, got '%s'", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	exerciseStore(t, s)

	// Close and reopen to verify persistence
	s.Close()

	s2, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get("count_cue")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !value.Equal(got, value.Int(3)) {
		t.Errorf("expected 3 after reopen, got '%v'", got)
	}

	version, err := s2.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected schema version %s, got '%s'", SchemaVersion, version)
	}
}

func TestSQLiteRejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	s.setMetadata("schema_version", "99")
	s.Close()

	if _, err := NewSQLite(path); err == nil {
		t.Error("expected error for unsupported schema version")
	}
}
