package kleboard

import (
	"context"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"path/filepath"
	"time"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher calls onChange after any of the watched files is written. Bursts
// of events within the debounce delay trigger a single call. A failing
// onChange is logged and watching continues.
type Watcher struct {
	paths    []string
	debounce time.Duration
	onChange func(ctx context.Context) error
	log      *zap.SugaredLogger
}

func NewWatcher(
	paths []string,
	debounce time.Duration,
	onChange func(ctx context.Context) error,
	log *zap.SugaredLogger,
) *Watcher {
	return &Watcher{
		paths:    paths,
		debounce: debounce,
		onChange: onChange,
		log:      log,
	}
}

func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// editors replace files, so watch the directories
	names := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		names[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := fw.Add(dir); err != nil {
				return fmt.Errorf("watch directory: %w", err)
			}
			dirs[dir] = true
		}
	}

	fire := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !names[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.Debugw("file changed", "file", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if err := w.onChange(ctx); err != nil {
				w.log.Errorw("regenerate failed", "error", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}
