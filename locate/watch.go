package locate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/lambdaloc/internal/types"
)

// watchDebounce groups the bursts of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// Watch runs Locate for (line, column) once, then again every time filename
// is written, until ctx is done. Every outcome is passed to report.
func (e *Engine) Watch(ctx context.Context, filename string, line, column int, report func(tt.Location, error)) error {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("error watching %s: %w", filepath.Dir(abs), err)
	}

	run := func() {
		e.Invalidate(abs)
		report(e.Locate(ctx, filename, line, column))
	}
	run()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			e.logger.Debug("file changed", zap.String("file", abs), zap.String("op", event.Op.String()))
			timer = time.After(watchDebounce)
		case <-timer:
			timer = nil
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", zap.Error(err))
		}
	}
}
