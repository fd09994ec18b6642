package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ModelWatcher polls a model file and calls back when its modification time
// moves forward, so a retrained digit model can be picked up without a
// restart.
type ModelWatcher struct {
	path          string
	checkInterval time.Duration
	onChange      func(path string)

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewModelWatcher returns nil if path cannot be stat'ed.
func NewModelWatcher(path string, checkInterval time.Duration) *ModelWatcher {
	// Follow symlinks so swapping the link target counts as a change.
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &ModelWatcher{
		path:          path,
		checkInterval: checkInterval,
		baseline:      info.ModTime(),
	}
}

// OnChange sets the callback. It runs on the watcher goroutine.
func (w *ModelWatcher) OnChange(callback func(path string)) {
	w.onChange = callback
}

// Start begins polling in a background goroutine.
func (w *ModelWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops polling and waits for the goroutine to exit.
func (w *ModelWatcher) Stop() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	<-w.doneCh
	w.stopCh = nil
}

func (w *ModelWatcher) watchLoop() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForUpdate() && w.onChange != nil {
				w.onChange(w.path)
			}
		}
	}
}

// checkForUpdate reports a newer file and moves the baseline to it, so each
// change fires once.
func (w *ModelWatcher) checkForUpdate() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !info.ModTime().After(w.baseline) {
		return false
	}
	w.baseline = info.ModTime()
	return true
}

// Path returns the watched file.
func (w *ModelWatcher) Path() string {
	return w.path
}
