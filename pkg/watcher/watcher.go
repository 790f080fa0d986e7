// Package watcher reports changes to tour definition files so the catalog
// can be reloaded while tg is running.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNoPaths        = errors.New("no paths to watch")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked when a watched file changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// WithFilter limits which files inside watched directories count. Explicitly
// watched files always count.
func WithFilter(fn func(path string) bool) WatcherOption {
	return func(w *Watcher) {
		w.filter = fn
	}
}

type fileStat struct {
	mtime time.Time
	size  int64
}

// Watcher monitors tour files and directories using fsnotify with a polling
// fallback. Directories are watched one level deep.
type Watcher struct {
	paths            []string
	dirs             map[string]bool // watched paths that are directories
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	filter           func(string) bool
	forcePoll        bool
	forcePollEnv     bool
	fsType           FilesystemType

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	last        map[string]fileStat

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the given files and directories.
func NewWatcher(paths []string, opts ...WatcherOption) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	w := &Watcher{
		dirs:             make(map[string]bool),
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		filter:           func(string) bool { return true },
		changeCh:         make(chan struct{}, 1),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		w.paths = append(w.paths, abs)
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())

	// Reset per-start state.
	w.useFallback = false
	w.forcePollEnv = envBool("TG_FORCE_POLL")
	w.fsType = DetectFilesystemType(w.paths[0])
	if isRemoteFilesystem(w.fsType) {
		w.useFallback = true
	}

	forcePoll := w.forcePoll || w.forcePollEnv
	if forcePoll {
		w.useFallback = true
	}

	for _, p := range w.paths {
		info, err := os.Stat(p)
		switch {
		case err == nil:
			w.dirs[p] = info.IsDir()
		case os.IsPermission(err):
			w.cancel()
			return ErrPermission
		}
	}
	w.last = w.scan()

	if !w.useFallback {
		if fsw, err := w.newFsWatcher(); err == nil {
			w.fsWatcher = fsw
			w.wg.Add(1)
			go w.watchFsnotify(fsw)
		} else {
			w.useFallback = true
		}
	}

	if w.useFallback {
		w.wg.Add(1)
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// newFsWatcher watches each directory that holds or is a watched path.
// Watching the parent directory keeps atomic renames visible.
func (w *Watcher) newFsWatcher() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	added := make(map[string]bool)
	for _, p := range w.paths {
		dir := p
		if !w.dirs[p] {
			dir = filepath.Dir(p)
		}
		if added[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
		added[dir] = true
	}
	return fsw, nil
}

// Stop stops watching and waits for the watch goroutines to exit. The change
// channel stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
	w.mu.Unlock()

	w.wg.Wait()
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives when a watched file changes.
// This is an alternative to using the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Paths returns the watched paths, made absolute.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// FilesystemType returns the best-effort filesystem classification of the
// first watched path.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// relevant reports whether an event path is one we care about, and whether
// it is an explicitly watched file.
func (w *Watcher) relevant(name string) (ok, explicit bool) {
	for _, p := range w.paths {
		if name == p && !w.dirs[p] {
			return true, true
		}
		if w.dirs[p] && filepath.Dir(name) == p {
			return w.filter(name), false
		}
	}
	return false, false
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			match, explicit := w.relevant(filepath.Clean(event.Name))
			if !match {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0 && explicit:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0:
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// scan stats every relevant file under the watched paths.
func (w *Watcher) scan() map[string]fileStat {
	out := make(map[string]fileStat)
	for _, p := range w.paths {
		if !w.dirs[p] {
			if info, err := os.Stat(p); err == nil {
				out[p] = fileStat{info.ModTime(), info.Size()}
			}
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := filepath.Join(p, e.Name())
			if e.IsDir() || !w.filter(name) {
				continue
			}
			if info, err := e.Info(); err == nil {
				out[name] = fileStat{info.ModTime(), info.Size()}
			}
		}
	}
	return out
}

// watchPolling monitors using periodic stat checks.
func (w *Watcher) watchPolling() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := w.scan()

			w.mu.Lock()
			prev := w.last
			w.last = now
			w.mu.Unlock()

			changed := len(now) != len(prev)
			for name, st := range now {
				if old, ok := prev[name]; !ok || !st.mtime.Equal(old.mtime) || st.size != old.size {
					changed = true
				}
			}
			for name := range prev {
				if _, ok := now[name]; !ok && !w.dirs[filepath.Dir(name)] {
					w.onError(ErrFileRemoved)
				}
			}

			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	// Stop may race a debounced call; drop it.
	if !started {
		return
	}

	w.onChange()

	// Non-blocking send to change channel
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
