package term

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gdnvim/internal/logger"
)

// watchDebounce is how long the file must stay quiet after an event
// burst before the change is reported. Editors and build tools fire
// several events per save.
const watchDebounce = 300 * time.Millisecond

// markWindow is how long the host's own saves suppress events.
const markWindow = 500 * time.Millisecond

// fileWatch reports external changes to the file under edit. It
// watches the file's directory rather than the file: most editors
// replace files on save and a watch on the old inode goes stale.
type fileWatch struct {
	fs     *fsnotify.Watcher
	log    *logger.Logger
	notify func(path string)

	mu      sync.Mutex
	path    string
	dir     string
	pending time.Time
	quiet   time.Time

	done chan struct{}
}

// newFileWatch starts the watch loop. notify runs on the loop
// goroutine once per debounced change.
func newFileWatch(log *logger.Logger, notify func(path string)) (*fileWatch, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatch{
		fs:     fs,
		log:    log,
		notify: notify,
		done:   make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

// Watch switches the watched file. An empty path stops watching.
func (fw *fileWatch) Watch(path string) {
	abs := ""
	if path != "" {
		abs = path
		if a, err := filepath.Abs(path); err == nil {
			abs = a
		}
	}
	dir := ""
	if abs != "" {
		dir = filepath.Dir(abs)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if dir != fw.dir {
		if fw.dir != "" {
			_ = fw.fs.Remove(fw.dir)
		}
		if dir != "" {
			if err := fw.fs.Add(dir); err != nil {
				fw.log.Warn("watch %s: %v", dir, err)
				dir = ""
			}
		}
		fw.dir = dir
	}
	fw.path = abs
	fw.pending = time.Time{}
}

// Mark suppresses events for the watched file briefly. The host calls
// it around its own writes so a save does not come back as an
// external change.
func (fw *fileWatch) Mark() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.quiet = time.Now().Add(markWindow)
	fw.pending = time.Time{}
}

func (fw *fileWatch) Close() {
	close(fw.done)
	_ = fw.fs.Close()
}

func (fw *fileWatch) loop() {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-fw.done:
			return
		case event, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			fw.handle(event)
		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watch: %v", err)
		case <-tick.C:
			fw.flush()
		}
	}
}

func (fw *fileWatch) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write &&
		event.Op&fsnotify.Create != fsnotify.Create &&
		event.Op&fsnotify.Rename != fsnotify.Rename {
		return
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.path == "" || filepath.Clean(event.Name) != fw.path {
		return
	}
	if time.Now().Before(fw.quiet) {
		return
	}
	fw.pending = time.Now()
}

func (fw *fileWatch) flush() {
	fw.mu.Lock()
	if fw.pending.IsZero() || time.Since(fw.pending) < watchDebounce {
		fw.mu.Unlock()
		return
	}
	path := fw.path
	fw.pending = time.Time{}
	fw.mu.Unlock()
	fw.notify(path)
}
