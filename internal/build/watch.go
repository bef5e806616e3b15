package build

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// FileWatcher polls a directory and calls onChange for every file that was
// added, modified or removed since the previous scan.
type FileWatcher struct {
	Dir       string
	Interval  time.Duration
	onChange  func(string) // called with the path that changed
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for dir. A non-positive interval means one second.
func NewFileWatcher(dir string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		Dir:       dir,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Run polls until ctx is done and returns nil.
func (w *FileWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	// prime cache
	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return nil
		}
	}
}

// WatchLoader returns a watcher that invalidates l whenever a profile file changes.
func WatchLoader(l *Loader, interval time.Duration, onChange func(string)) *FileWatcher {
	return NewFileWatcher(l.Dir(), interval, func(path string) {
		l.Invalidate()
		if onChange != nil {
			onChange(path)
		}
	})
}

// scan checks mtimes and invokes onChange for files that changed since the last scan.
func (w *FileWatcher) scan(prime bool) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		// directory missing: keep state, try again next tick
		return
	}
	current := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := profileID(e.Name()); !ok {
			continue
		}
		p := filepath.Join(w.Dir, e.Name())
		fi, err := e.Info()
		if err != nil {
			continue
		}
		current[p] = true
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime {
			continue
		}
		if !ok || !mt.Equal(last) {
			w.notify(p)
		}
	}
	for p := range w.lastMTime {
		if !current[p] {
			delete(w.lastMTime, p)
			if !prime {
				w.notify(p)
			}
		}
	}
}

func (w *FileWatcher) notify(p string) {
	if w.onChange != nil {
		w.onChange(p)
	}
}
