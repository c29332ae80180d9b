package viewdef

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fulldump/inceptioncrm/listview"
)

const reloadDelay = 200 * time.Millisecond

// Watch calls onChange with the parsed definitions every time filename
// changes, until ctx is done. Invalid files are logged and skipped. The
// directory is watched so editors that replace the file are also detected.
func Watch(ctx context.Context, filename string, logger *zap.Logger, onChange func(Definitions)) error {

	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer watcher.Close()

	filename = filepath.Clean(filename)
	err = watcher.Add(filepath.Dir(filename))
	if err != nil {
		return fmt.Errorf("watch '%s': %w", filename, err)
	}

	reload := listview.NewDebouncer(reloadDelay, nil)
	defer reload.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("view definitions changed", zap.String("file", filename), zap.String("op", event.Op.String()))
			reload.Debounce(func() {
				definitions, err := Load(filename)
				if err != nil {
					logger.Warn("reload view definitions", zap.String("file", filename), zap.Error(err))
					return
				}
				logger.Info("view definitions reloaded", zap.String("file", filename), zap.Int("views", len(definitions)))
				onChange(definitions)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch view definitions", zap.Error(err))
		}
	}
}
