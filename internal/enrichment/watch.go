package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// ContactsWatcher serves lookups from a contacts file and swaps in a fresh
// index whenever the file changes on disk. A file that fails to parse keeps
// the previous index.
type ContactsWatcher struct {
	path    string
	current atomic.Pointer[StaticLookup]
	reloads atomic.Int64
}

// WatchContacts loads path and keeps it current until ctx is cancelled.
func WatchContacts(ctx context.Context, path string) (*ContactsWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve contacts path: %w", err)
	}

	w := &ContactsWatcher{path: abs}
	if err := w.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create contacts watcher: %w", err)
	}
	// Watch the directory: editors and config managers replace files by rename.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch contacts dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs {
					continue
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
					continue
				}
				if err := w.Reload(); err != nil {
					slog.Warn("[Enrichment] Contacts reload failed, keeping previous list", "path", abs, "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("[Enrichment] Contacts watcher error", "error", err)
			}
		}
	}()

	return w, nil
}

// Reload re-reads the contacts file.
func (w *ContactsWatcher) Reload() error {
	lookup, err := LoadContacts(w.path)
	if err != nil {
		return err
	}
	w.current.Store(lookup)
	n := w.reloads.Add(1)
	slog.Info("[Enrichment] Contacts loaded", "path", w.path, "numbers", lookup.Len(), "generation", n)
	return nil
}

// Generation counts successful loads, starting at 1.
func (w *ContactsWatcher) Generation() int64 {
	return w.reloads.Load()
}

func (w *ContactsWatcher) Len() int {
	return w.current.Load().Len()
}

func (w *ContactsWatcher) Lookup(ctx context.Context, number string) (*Identity, error) {
	return w.current.Load().Lookup(ctx, number)
}
