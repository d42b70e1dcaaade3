package plan

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
)

// DefaultDebounce is how long Watch waits after the last change before
// calling back.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls back whenever a plan file changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger

	fire  chan struct{}
	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher returns a watcher for the plan at path.
func NewWatcher(path string, debounce time.Duration, log *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		log:      log,
		fire:     make(chan struct{}, 1),
	}
}

// Watch blocks until ctx is done, calling onChange once per burst of
// writes to the plan. onChange runs on the calling goroutine, so calls never
// overlap and none is in flight once Watch returns. The parent directory is
// watched so that editors which replace the file by rename are still seen.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.IOFailure("watch", dir, err)
	}
	w.log.Info("watching plan", zap.String("path", w.path))

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("plan changed", zap.String("op", event.Op.String()))
			w.schedule()

		case <-w.fire:
			if ctx.Err() != nil {
				return nil
			}
			onChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer. When it expires it only signals
// fire; a pending signal absorbs any further ones.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
