package rag

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"chakancha/internal/logging"
)

// Watcher re-ingests a FAQ file whenever it changes on disk, so knowledge
// base edits go live without a restart.
type Watcher struct {
	ingestor *Ingestor
	path     string
	opts     IngestOptions
	debounce time.Duration
}

// NewWatcher builds a Watcher for one FAQ file.
func NewWatcher(ingestor *Ingestor, path string, opts IngestOptions) *Watcher {
	return &Watcher{
		ingestor: ingestor,
		path:     path,
		opts:     opts,
		debounce: 500 * time.Millisecond,
	}
}

// Run watches until the context is cancelled. Editors often write a file
// several times in quick succession, so events are debounced before the
// re-ingest fires.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file: many editors replace the
	// file on save, which would drop a file-level watch.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	logging.RAG("Watching %s for FAQ changes", w.path)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logging.RAGDebug("FAQ file event: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.RAGError("Watcher error: %v", err)

		case <-pending:
			logging.RAG("FAQ file changed, re-ingesting %s", w.path)
			if _, err := w.ingestor.IngestFile(ctx, w.path, w.opts); err != nil {
				logging.RAGError("Re-ingest failed: %v", err)
			}
		}
	}
}
