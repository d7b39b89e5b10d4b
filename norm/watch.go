package norm

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a normalizer whenever its rule file changes on disk.
type Watcher struct {
	n          *Normalizer
	watcher    *fsnotify.Watcher
	logger     *zap.Logger
	isWatching bool
	done       chan struct{}
}

// NewWatcher creates a watcher over the normalizer's configuration file.
func NewWatcher(n *Normalizer, logger *zap.Logger) (*Watcher, error) {
	if n.cfgPath == "" {
		return nil, fmt.Errorf("normalizer was not built from a file")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	return &Watcher{n: n, watcher: fw, logger: logger, done: make(chan struct{})}, nil
}

// Start begins watching. Reloads happen on write events with a short
// settle delay so editors writing in bursts trigger a single reload.
func (w *Watcher) Start() error {
	if w.isWatching {
		return fmt.Errorf("already watching")
	}
	if err := w.watcher.Add(w.n.cfgPath); err != nil {
		return fmt.Errorf("error adding rule file to watcher: %w", err)
	}
	w.isWatching = true
	go w.watchLoop()
	return nil
}

// Stop ends watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	if !w.isWatching {
		return nil
	}
	w.isWatching = false
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Error("watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	// wait for a while after file change to consider multiple changes as one
	time.Sleep(100 * time.Millisecond)
	if err := w.n.Reload(); err != nil {
		if w.logger != nil {
			w.logger.Error("reload failed", zap.String("file", event.Name), zap.Error(err))
		}
		return
	}
	if w.logger != nil {
		w.logger.Info("rule file reloaded",
			zap.String("file", event.Name),
			zap.Int("rules", len(w.n.Rules())))
	}
}
