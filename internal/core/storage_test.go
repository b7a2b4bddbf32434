package core

import (
	"path/filepath"
	"testing"
)

func TestOpenPersistentStoreSelectsDriver(t *testing.T) {
	t.Setenv("LIMSCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store == nil {
		t.Fatalf("expected store")
	}

	t.Setenv("LIMSCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("LIMSCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	if _, err := OpenPersistentStore(NewDefaultRulesEngine()); err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Setenv("LIMSCORE_STORAGE_DRIVER", "filing-cabinet")
	if _, err := OpenPersistentStore(nil); err == nil {
		t.Fatalf("unknown driver must fail")
	}
}
