// Package watch re-runs generation when its input files change.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period before a batch of changes is reported.
const DefaultDelay = 200 * time.Millisecond

// FileWatcher watches a fixed set of files and reports changes to them in
// debounced batches. Parent directories are watched instead of the files
// themselves so that editors replacing a file on save are still seen.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]struct{}
	dirs      []string
	onChange  func([]string) error
	logger    *slog.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher for the given files. Empty paths are ignored.
func NewFileWatcher(files []string, delay time.Duration, logger *slog.Logger, onChange func([]string) error) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(delay),
		files:     make(map[string]struct{}),
		onChange:  onChange,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		fw.files[abs] = struct{}{}
		if dir := filepath.Dir(abs); !slices.Contains(fw.dirs, dir) {
			fw.dirs = append(fw.dirs, dir)
		}
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := fw.onChange(files); err != nil {
			fw.logger.Error("handling file changes", "error", err)
		}
	})
	return fw, nil
}

// Files returns the watched files, sorted.
func (fw *FileWatcher) Files() []string {
	files := make([]string, 0, len(fw.files))
	for f := range fw.files {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Start begins watching in the background.
func (fw *FileWatcher) Start() error {
	for _, dir := range fw.dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", "dir", dir)
	}
	fw.wg.Add(1)
	go fw.watch()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()
		fw.debouncer.Stop()
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !fw.matches(event.Name) {
				continue
			}
			fw.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			fw.debouncer.Add(event.Name)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", "error", err)

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	_, ok := fw.files[abs]
	return ok
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
	// running is held while the callback runs, so callbacks never overlap.
	running sync.Mutex
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}
	d.files[file] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush hands the accumulated files, sorted, to the callback. Callbacks run
// one at a time and outside the lock, so changes made meanwhile are batched
// for the next flush.
func (d *Debouncer) flush() {
	d.running.Lock()
	defer d.running.Unlock()

	d.mutex.Lock()
	if d.stopped || len(d.files) == 0 {
		d.mutex.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	slices.Sort(files)
	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop drops pending changes. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
}
