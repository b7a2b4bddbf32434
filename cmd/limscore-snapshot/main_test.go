package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"limscore/internal/infra/persistence/memory"
)

func TestRunRequiresExactlyOneMode(t *testing.T) {
	t.Setenv("LIMSCORE_STORAGE_DRIVER", "memory")
	var out bytes.Buffer
	if err := run(nil, &out); err == nil {
		t.Fatalf("expected error with no flags")
	}
	if err := run([]string{"-export", "a", "-import", "b"}, &out); err == nil {
		t.Fatalf("expected error with both flags")
	}
}

func TestExportWritesSnapshotJSON(t *testing.T) {
	t.Setenv("LIMSCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("LIMSCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))

	path := filepath.Join(t.TempDir(), "snap.json")
	var out bytes.Buffer
	if err := run([]string{"-export", path}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snapshot memory.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("exported file is not a snapshot: %v", err)
	}
}

func TestExportToStdout(t *testing.T) {
	t.Setenv("LIMSCORE_STORAGE_DRIVER", "memory")
	var out bytes.Buffer
	if err := run([]string{"-export", "-"}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out.String(), "{") {
		t.Fatalf("expected JSON on stdout, got %q", out.String())
	}
}

func TestImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")
	t.Setenv("LIMSCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("LIMSCORE_SQLITE_PATH", dbPath)

	snapPath := filepath.Join(dir, "snap.json")
	var out bytes.Buffer
	if err := run([]string{"-export", snapPath}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := run([]string{"-import", snapPath}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "snapshot imported") {
		t.Fatalf("missing confirmation: %q", out.String())
	}
}
