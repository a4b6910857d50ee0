// Package watcher monitors the intake inbox for new captures. A capture is
// either a video file or a directory of still photos; either way it is only
// announced once it has stopped growing.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/readalongapp/digitizer/internal/store"
)

// DefaultSettleDelay is how long a capture must stay unchanged before it is
// announced. Phone transfers write in bursts, so one quiet interval is enough.
const DefaultSettleDelay = 2 * time.Second

// Capture is a settled intake item ready for digitization.
type Capture struct {
	Path    string
	Kind    string // store.SourceVideo or store.SourceArchive
	Size    int64
	ModTime time.Time
}

// pendingCapture tracks an intake item that may still be changing.
type pendingCapture struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Watcher announces settled captures appearing in the inbox directory.
type Watcher struct {
	inbox  string
	settle time.Duration
	logger *slog.Logger

	fs      *fsnotify.Watcher
	pending map[string]*pendingCapture
	mu      sync.Mutex

	events chan Capture
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher over the inbox directory. The directory must exist.
func New(inboxPath string, settle time.Duration, logger *slog.Logger) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	info, err := os.Stat(inboxPath)
	if err != nil {
		return nil, fmt.Errorf("stat inbox: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox %s is not a directory", inboxPath)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fs.Add(inboxPath); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch inbox: %w", err)
	}

	return &Watcher{
		inbox:   filepath.Clean(inboxPath),
		settle:  settle,
		logger:  logger,
		fs:      fs,
		pending: make(map[string]*pendingCapture),
		events:  make(chan Capture, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}, nil
}

// Start processes inbox events until the context is cancelled. It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	w.logger.Info("watching inbox", "path", w.inbox, "settle", w.settle)
	<-ctx.Done()
	return nil
}

// Rescan arms settling for items already sitting in the inbox, so captures
// dropped while the process was down are announced on startup through the
// same settle path as live events.
func (w *Watcher) Rescan() error {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return fmt.Errorf("rescan inbox: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(w.inbox, entry.Name())
		if shouldIgnore(path) {
			continue
		}
		if entry.IsDir() {
			if err := w.fs.Add(path); err != nil {
				w.logger.Warn("failed to watch archive", "path", path, "error", err)
			}
		}
		w.startSettling(path)
	}
	return nil
}

// Events returns the channel of settled captures.
func (w *Watcher) Events() <-chan Capture {
	return w.events
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	close(w.done)

	w.mu.Lock()
	for _, pending := range w.pending {
		pending.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if shouldIgnore(path) {
		return
	}

	// Events inside a photo archive re-arm settling for the archive itself.
	parent := filepath.Dir(path)
	if parent != w.inbox {
		if filepath.Dir(parent) == w.inbox && !shouldIgnore(parent) {
			w.startSettling(parent)
		}
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(path)
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if err := w.fs.Add(path); err != nil {
					w.logger.Warn("failed to watch archive", "path", path, "error", err)
				}
			}
		}
		w.startSettling(path)
		return
	}
}

// startSettling arms (or re-arms) the settle timer for a capture.
func (w *Watcher) startSettling(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
	}

	size, modTime, err := captureState(path)
	if err != nil {
		delete(w.pending, path)
		return
	}

	pending := &pendingCapture{size: size, modTime: modTime}
	pending.timer = time.AfterFunc(w.settle, func() {
		w.checkSettled(path)
	})
	w.pending[path] = pending
}

// checkSettled announces the capture if it stopped changing, otherwise
// re-arms the timer with the fresh state.
func (w *Watcher) checkSettled(path string) {
	size, modTime, settled := w.takeSettled(path)
	if !settled {
		return
	}

	kind := store.SourceVideo
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		kind = store.SourceArchive
	} else if !isVideoFile(path) {
		w.logger.Debug("ignoring non-capture file", "path", path)
		return
	}

	// The send may block on a slow consumer; holding the lock here would
	// stall startSettling and with it the whole event loop.
	capture := Capture{Path: path, Kind: kind, Size: size, ModTime: modTime}
	select {
	case w.events <- capture:
		w.logger.Info("capture settled", "path", path, "kind", kind)
	case <-w.done:
	}
}

// takeSettled removes a pending capture once it stops changing and reports
// its final state. It re-arms the timer and reports false while the capture
// is still growing.
func (w *Watcher) takeSettled(path string) (int64, time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, exists := w.pending[path]
	if !exists {
		return 0, time.Time{}, false
	}

	size, modTime, err := captureState(path)
	if err != nil {
		delete(w.pending, path)
		return 0, time.Time{}, false
	}

	if size != pending.size || !modTime.Equal(pending.modTime) {
		pending.size = size
		pending.modTime = modTime
		pending.timer = time.AfterFunc(w.settle, func() {
			w.checkSettled(path)
		})
		return 0, time.Time{}, false
	}

	delete(w.pending, path)
	return size, modTime, true
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}
}

// captureState summarizes a capture for change detection. For directories it
// folds in the entry count and newest child so added photos keep it pending.
func captureState(path string) (int64, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, err
	}
	if !info.IsDir() {
		return info.Size(), info.ModTime(), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, time.Time{}, err
	}

	size := int64(len(entries))
	newest := info.ModTime()
	for _, entry := range entries {
		ei, err := entry.Info()
		if err != nil {
			continue
		}
		size += ei.Size()
		if ei.ModTime().After(newest) {
			newest = ei.ModTime()
		}
	}
	return size, newest, nil
}

func isVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv", ".avi", ".webm":
		return true
	}
	return false
}

func shouldIgnore(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") ||
		strings.HasSuffix(name, ".part")
}
