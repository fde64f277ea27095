package shell

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/randompixle/Flame/internal/logging"
)

// WatchReason is the reload reason used for extension directory changes.
const WatchReason = "extension directory changed"

// Watch requests a reload whenever a unit file in the extension directory is
// created, written, removed or renamed. It only marks the registry stale; the
// rebuild still happens between lines. The watcher stops when ctx is done.
func (s *Shell) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(s.layout.ExtensionDir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", s.layout.ExtensionDir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				s.handleEvent(event)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn().Err(err).Msg("extension watcher error")
			}
		}
	}()
	return nil
}

func (s *Shell) handleEvent(event fsnotify.Event) {
	if !s.runtimes.Qualifies(filepath.Base(event.Name)) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	logging.Debug().Str("op", event.Op.String()).Str("path", event.Name).Msg("extension changed")
	s.RequestReload(WatchReason)
}
