package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Operation is the kind of change a poll observed.
type Operation int

const (
	// OpWrite means the file's modification time moved.
	OpWrite Operation = iota

	// OpCreate means a watched path that was absent now exists.
	OpCreate

	// OpRemove means a watched file disappeared.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one observed file change.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler receives change events on the watcher goroutine.
type Handler func(Event)

// Watcher polls files for modification-time changes. Polling is
// deliberate: the settings file lives on whatever filesystem the
// editor runs from, and poll-plus-debounce behaves the same on all of
// them.
type Watcher struct {
	interval time.Duration
	debounce time.Duration

	mu       sync.Mutex
	files    map[string]time.Time
	handlers []Handler
	pending  map[string]Event
	running  bool
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDebounce sets how long a change must stay quiet before it is
// reported. Zero reports every change immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a stopped watcher.
func NewWatcher(opts ...Option) *Watcher {
	w := &Watcher{
		interval: 500 * time.Millisecond,
		debounce: 100 * time.Millisecond,
		files:    make(map[string]time.Time),
		pending:  make(map[string]Event),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch adds a file to the watch list. Watching a path that does not
// exist yet is allowed; its creation is reported.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			w.files[abs] = time.Time{}
			return nil
		}
		return err
	}
	w.files[abs] = info.ModTime()
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, abs)
	return nil
}

// WatchedFiles returns the watched paths.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// OnChange registers a change handler. Handlers run on the watcher
// goroutine and must hand heavy work off.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins polling. Starting a running watcher does nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	stop, done := w.stop, w.done
	w.mu.Unlock()

	go w.run(stop, done)
}

// Stop halts polling and waits for the poll goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stop, done := w.stop, w.done
	w.mu.Unlock()

	close(stop)
	<-done
}

// IsRunning reports whether the poll goroutine is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) run(stop, done chan struct{}) {
	defer close(done)

	poll := time.NewTicker(w.interval)
	defer poll.Stop()

	// A nil channel never fires; with debounce off, scan emits
	// directly and no flush tick is needed.
	var flushC <-chan time.Time
	if w.debounce > 0 {
		flush := time.NewTicker(w.debounce)
		defer flush.Stop()
		flushC = flush.C
	}

	for {
		select {
		case <-stop:
			return
		case <-poll.C:
			w.scan()
		case <-flushC:
			w.flush(time.Now())
		}
	}
}

// scan stats every watched file and queues events for those that
// changed since the last poll.
func (w *Watcher) scan() {
	w.mu.Lock()
	snapshot := make(map[string]time.Time, len(w.files))
	for path, mod := range w.files {
		snapshot[path] = mod
	}
	w.mu.Unlock()

	now := time.Now()
	for path, lastMod := range snapshot {
		info, err := os.Stat(path)

		var ev Event
		switch {
		case os.IsNotExist(err):
			if lastMod.IsZero() {
				continue
			}
			ev = Event{Path: path, Op: OpRemove, Time: now}
			w.setModTime(path, time.Time{})
		case err != nil:
			continue
		case lastMod.IsZero():
			ev = Event{Path: path, Op: OpCreate, Time: now}
			w.setModTime(path, info.ModTime())
		case !info.ModTime().Equal(lastMod):
			ev = Event{Path: path, Op: OpWrite, Time: now}
			w.setModTime(path, info.ModTime())
		default:
			continue
		}

		if w.debounce <= 0 {
			w.emit(ev)
		} else {
			w.queue(ev)
		}
	}
}

func (w *Watcher) setModTime(path string, mod time.Time) {
	w.mu.Lock()
	if _, ok := w.files[path]; ok {
		w.files[path] = mod
	}
	w.mu.Unlock()
}

// queue coalesces an event with any pending one for the same path.
// Remove wins over everything, create wins over write, and repeated
// writes just push the quiet-period deadline out.
func (w *Watcher) queue(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, ok := w.pending[ev.Path]
	if ok && ev.Op == OpWrite && prev.Op != OpWrite {
		ev.Op = prev.Op
	}
	w.pending[ev.Path] = ev
}

// flush emits queued events that have been quiet for the debounce
// period.
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var ready []Event
	for path, ev := range w.pending {
		if now.Sub(ev.Time) >= w.debounce {
			ready = append(ready, ev)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, ev := range ready {
		w.emit(ev)
	}
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
