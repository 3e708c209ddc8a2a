package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/fitch/internal/storage"
)

// Watch starts an fsnotify watcher on the vault root and re-verifies proof
// files as they change until ctx is cancelled. Bursts of writes to one file
// are coalesced for debounce before the file is read.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, rec *Recorder, store storage.Provider, vaultRoot string, debounce time.Duration, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	// Changed files wait in pending until their timer fires on due.
	pending := make(map[string]*time.Timer)
	due := make(chan string, 64)
	scheduleVerify := func(rel string) {
		if debounce <= 0 {
			verifyFile(rec, store, rel, logger)
			return
		}
		if t, ok := pending[rel]; ok {
			t.Reset(debounce)
			return
		}
		pending[rel] = time.AfterFunc(debounce, func() {
			select {
			case due <- rel:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			for _, t := range pending {
				t.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(rec, store, logger)

		case rel := <-due:
			delete(pending, rel)
			verifyFile(rec, store, rel, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Verify any proofs already in the new directory.
					indexNewDir(rec, store, vaultRoot, absPath, logger)
					continue
				}
			}

			if !storage.IsProofFile(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				scheduleVerify(rel)

			case ev.Op&fsnotify.Remove != 0:
				if t, ok := pending[rel]; ok {
					t.Stop()
					delete(pending, rel)
				}
				if delErr := rec.Remove(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event (if it
				// stays within a watched dir). We delete the old entry
				// immediately and schedule a short reconciliation pass
				// to catch any stragglers.
				if delErr := rec.Remove(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func verifyFile(rec *Recorder, store storage.Provider, rel string, logger *slog.Logger) {
	data, err := store.Read(rel)
	if err != nil {
		// Removed before the debounce elapsed; the Remove event handles it.
		logger.Debug("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if _, err := rec.Submit(rel, data); err != nil {
		logger.Warn("watcher: submit failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: submitted", slog.String("path", rel))
}

// reconcileAfterRename does a lightweight sync using batch lookups:
// finds index entries without a corresponding file on disk and removes them,
// and finds on-disk files that are not indexed and submits them.
func reconcileAfterRename(rec *Recorder, store storage.Provider, logger *slog.Logger) {
	checksums, err := rec.db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := rec.Remove(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
			}
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		verifyFile(rec, store, p, logger)
	}
}

// indexNewDir submits any proof files found in a newly created directory.
func indexNewDir(rec *Recorder, store storage.Provider, vaultRoot, dirPath string, logger *slog.Logger) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsProofFile(path) {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		verifyFile(rec, store, filepath.ToSlash(rel), logger)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
