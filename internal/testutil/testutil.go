// Package testutil provides shared test helpers for setting up vaults,
// databases and recorders.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/fitch/internal/index"
	"github.com/starford/fitch/internal/rules"
	"github.com/starford/fitch/internal/storage"
	"github.com/starford/fitch/internal/verify"
)

// Sample proof files.
const (
	ModusPonens = "---\ntitle: Modus ponens\nconclusion: Q\n---\n```proof\nP -> Q ; PR\nP ; PR\nQ ; ->E 1, 2\n```\n"
	WrongRule   = "P ∨ Q ; PR\nP ; ∧E 1\n"
	Undecodable = "P ; PR\n| | Q ; PR\n"
)

// Defaults is the verification config used by test recorders.
var Defaults = verify.Config{Rulesets: []rules.Ruleset{rules.TFLBasic, rules.TFLDerived}}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "fitch-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store.Root(), store
}

// TestRecorder creates a recorder over db that is closed on cleanup.
func TestRecorder(t *testing.T, db index.ProofIndex, cb index.EventCallback) *index.Recorder {
	t.Helper()
	rec := index.NewRecorder(db, Defaults, Logger(), cb)
	t.Cleanup(rec.Close)
	return rec
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
