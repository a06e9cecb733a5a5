package server

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls onChange after any of a set of files is written, created,
// removed, or renamed. Bursts of events within the debounce window collapse
// into a single call. Calls are made one at a time from the goroutine
// running Start.
//
// Editors often save by renaming a temporary file over the original, which
// drops a watch placed on the file itself, so the Watcher watches each
// file's directory and filters events by path.
type Watcher struct {
	files    map[string]struct{}
	onChange func()
	debounce time.Duration
	done     chan struct{}
	once     sync.Once
	ready    chan struct{}
}

// NewWatcher returns a Watcher for the given files. Paths that do not exist
// yet are still watched, so creating them triggers onChange.
func NewWatcher(files []string, debounce time.Duration, onChange func()) *Watcher {
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		set[filepath.Clean(f)] = struct{}{}
	}
	return &Watcher{
		files:    set,
		onChange: onChange,
		debounce: debounce,
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watches are in place.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start watches until Stop is called. It returns an error only if the
// underlying watcher cannot be created.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		close(w.ready)
		return err
	}
	defer fsw.Close()

	dirs := make(map[string]struct{})
	for f := range w.files {
		dir := filepath.Dir(f)
		if _, seen := dirs[dir]; seen {
			continue
		}
		dirs[dir] = struct{}{}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			log.Printf("warning: failed to watch %s: %v", dir, err)
		}
	}
	close(w.ready)

	// onChange runs on this loop, so calls never overlap. Events that
	// arrive during a slow call are debounced into the next one.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.onChange()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return nil
		}
	}
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.done) })
}
