package index

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/chordbook/internal/checksum"
	"github.com/starford/chordbook/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted"; sum is the new document
// checksum, empty for deletions.
type EventCallback func(kind, id, sum string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the library directory and processes
// document change events until ctx is cancelled. It calls cb (if non-nil)
// after each successful index mutation.
//
// Rename events trigger a reconciliation pass that removes stale index
// entries whose documents no longer exist on disk and indexes documents that
// appeared under a new name.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// Temp files from atomic writes do not parse as ids and are
			// skipped; the final rename arrives as a Create on the target.
			id, isDoc := storage.IDFromPath(ev.Name)
			if !isDoc {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(id)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("id", id), slog.String("error", readErr.Error()))
					continue
				}
				prev, _ := db.GetChecksum(id)
				sum := checksum.Sum(data)
				if prev == sum {
					// Already indexed by the writer, usually the song service.
					continue
				}
				var mod time.Time
				if info, statErr := os.Stat(ev.Name); statErr == nil {
					mod = info.ModTime()
				}
				if idxErr := IndexDocument(db, id, data, mod); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("id", id), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if prev == "" {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("id", id), slog.String("op", kind))
				if cb != nil {
					cb(kind, id, sum)
				}

			case ev.Op&fsnotify.Remove != 0:
				if prev, _ := db.GetChecksum(id); prev == "" {
					continue
				}
				if delErr := db.DeleteSong(id); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("id", id))
				if cb != nil {
					cb("deleted", id, "")
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event. We delete
				// the old entry immediately and schedule a short
				// reconciliation pass to catch any stragglers.
				if delErr := db.DeleteSong(id); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("id", id), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("id", id))
					if cb != nil {
						cb("deleted", id, "")
					}
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

// reconcile does a lightweight sync using batch lookups: it removes index
// entries without a document on disk and indexes documents that are missing
// or changed.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.ID] = m.Checksum
	}

	for id := range checksums {
		if _, ok := disk[id]; !ok {
			if delErr := db.DeleteSong(id); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("id", id))
				if cb != nil {
					cb("deleted", id, "")
				}
			}
		}
	}

	for id, cs := range disk {
		if checksums[id] == cs {
			continue
		}
		data, readErr := store.Read(id)
		if readErr != nil {
			continue
		}
		if idxErr := IndexDocument(db, id, data, time.Time{}); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("id", id))
			kind := "updated"
			if checksums[id] == "" {
				kind = "created"
			}
			if cb != nil {
				cb(kind, id, cs)
			}
		}
	}
}
