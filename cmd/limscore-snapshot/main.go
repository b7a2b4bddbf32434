// Command limscore-snapshot exports or imports the full inventory state as
// JSON. The store backend is selected through the LIMSCORE_* environment
// variables, so the same binary moves state between sqlite, postgres, and
// plain files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"limscore/internal/core"
	"limscore/internal/infra/persistence/memory"
)

// snapshotter is satisfied by every store backend; they all embed the
// in-memory implementation.
type snapshotter interface {
	ExportState() memory.Snapshot
	ImportState(memory.Snapshot)
}

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "limscore-snapshot:", err)
		exitFunc(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("limscore-snapshot", flag.ContinueOnError)
	exportPath := fs.String("export", "", "write the state snapshot to this file ('-' for stdout)")
	importPath := fs.String("import", "", "load the state snapshot from this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*exportPath == "") == (*importPath == "") {
		return fmt.Errorf("exactly one of -export or -import is required")
	}

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	snap, ok := store.(snapshotter)
	if !ok {
		return fmt.Errorf("store backend does not support snapshots")
	}

	if *exportPath != "" {
		data, err := json.MarshalIndent(snap.ExportState(), "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if *exportPath == "-" {
			_, err = stdout.Write(append(data, '\n'))
			return err
		}
		return os.WriteFile(*exportPath, data, 0o644)
	}

	data, err := os.ReadFile(*importPath)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot memory.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	snap.ImportState(snapshot)
	// A no-op transaction forces durable backends to persist the imported state.
	if _, err := store.RunInTransaction(context.Background(), func(core.Transaction) error { return nil }); err != nil {
		return fmt.Errorf("persist imported state: %w", err)
	}
	fmt.Fprintln(stdout, "snapshot imported")
	return nil
}
