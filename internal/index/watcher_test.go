package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/storage"
)

func testVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store.Root(), store
}

// watcherTestEnv sets up a vault dir, storage, DB and recorder for watcher tests.
func watcherTestEnv(t *testing.T, cb EventCallback) (string, storage.Provider, *DB, *Recorder) {
	t.Helper()
	vaultDir, store := testVault(t)
	db := testDB(t)
	rec := NewRecorder(db, defaults, quietLogger(), cb)
	t.Cleanup(rec.Close)
	return vaultDir, store, db, rec
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, rec *Recorder, store storage.Provider, vaultDir string, debounce time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, rec, store, vaultDir, debounce, quietLogger())
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewFileVerified(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	vaultDir, store, db, rec := watcherTestEnv(t, func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	startWatch(t, rec, store, vaultDir, 0)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte(validProof), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		s, err := db.GetProof("new.md")
		return err == nil && s.Status == models.StatusValid
	}, "new file not verified by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e.Kind == EventVerified && e.Path == "new.md" && e.Pass != nil {
				return true
			}
		}
		return false
	}, "expected verified event for new.md")
}

func TestWatcher_EditReverifies(t *testing.T) {
	vaultDir, store, db, rec := watcherTestEnv(t, nil)
	_ = os.WriteFile(filepath.Join(vaultDir, "edit.md"), []byte(validProof), 0o644)
	if err := Sync(db, store, defaults, quietLogger()); err != nil {
		t.Fatal(err)
	}
	startWatch(t, rec, store, vaultDir, 50*time.Millisecond)

	for range 3 {
		_ = os.WriteFile(filepath.Join(vaultDir, "edit.md"), []byte(invalidProof), 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		s, err := db.GetProof("edit.md")
		return err == nil && s.Status == models.StatusInvalid
	}, "edited file not re-verified")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir, store, db, rec := watcherTestEnv(t, nil)
	startWatch(t, rec, store, vaultDir, 0)

	subDir := filepath.Join(vaultDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte(validProof), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("subdir/deep.md")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	vaultDir, store, db, rec := watcherTestEnv(t, nil)

	_ = os.WriteFile(filepath.Join(vaultDir, "del.md"), []byte(validProof), 0o644)
	_ = Sync(db, store, defaults, quietLogger())

	cs, _ := db.GetChecksum("del.md")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	startWatch(t, rec, store, vaultDir, 0)
	_ = os.Remove(filepath.Join(vaultDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.md")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir, store, db, rec := watcherTestEnv(t, nil)

	_ = os.WriteFile(filepath.Join(vaultDir, "old.md"), []byte(validProof), 0o644)
	_ = Sync(db, store, defaults, quietLogger())

	startWatch(t, rec, store, vaultDir, 0)
	_ = os.Rename(filepath.Join(vaultDir, "old.md"), filepath.Join(vaultDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.md")
		newCS, _ := db.GetChecksum("renamed.md")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestRecorder_UndecodableEmitsWithoutPass(t *testing.T) {
	got := make(chan Event, 1)
	_, _, db, rec := watcherTestEnv(t, func(ev Event) { got <- ev })

	s, err := rec.Submit("broken.md", []byte(brokenProof))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.Status != models.StatusError {
		t.Errorf("status = %s, want error", s.Status)
	}
	ev := <-got
	if ev.Pass != nil || ev.Summary == nil || ev.Summary.Error == "" {
		t.Errorf("event = %+v", ev)
	}
	if stored, _ := db.GetProof("broken.md"); stored == nil || stored.Status != models.StatusError {
		t.Errorf("stored = %+v", stored)
	}
}
