package oauth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"spotivol/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last token file
// change before reloading.
const DefaultDebounceInterval = 250 * time.Millisecond

// TokenWatcher reloads a Client's tokens when the token file is changed by
// another process, e.g. a "spotivol auth login" run while the console is open.
type TokenWatcher struct {
	client   *Client
	debounce time.Duration
	onChange func()

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewTokenWatcher creates a watcher for client's token file. onChange, if
// non-nil, is called after every reload.
func NewTokenWatcher(client *Client, debounce time.Duration, onChange func()) *TokenWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	return &TokenWatcher{
		client:   client,
		debounce: debounce,
		onChange: onChange,
	}
}

// Start begins watching the state directory, creating it if necessary.
func (w *TokenWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	dir := w.client.Store().Dir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(watcher.Events, watcher.Errors, w.stopCh)

	logging.Debug("TokenWatcher", "Watching %s for token changes", dir)
	return nil
}

func (w *TokenWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != TokensFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.reloadDebounced()

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("TokenWatcher", err, "fsnotify error")
		}
	}
}

// reloadDebounced collapses the burst of events a single atomic save produces.
func (w *TokenWatcher) reloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		if !w.IsRunning() {
			return
		}
		w.client.Reload()
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// Stop stops watching. It is safe to call on a stopped watcher.
func (w *TokenWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}

// IsRunning reports whether the watcher is active.
func (w *TokenWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
