package autotile

import (
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports class and script files that change in the watched
// directories. Events carries file paths. A path is reported once it has
// been quiet for 100ms, so a truncate followed by a write yields one event
// after the write.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		debounce: 100 * time.Millisecond,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// Apply reloads every pending path into r without blocking. It returns the
// paths it handled and the joined reload errors.
func (w *Watcher) Apply(r *Registry) ([]string, error) {
	var (
		paths []string
		errs  []error
	)
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return paths, errors.Join(errs...)
			}
			if err := r.Reload(path); err != nil {
				errs = append(errs, err)
			}
			paths = append(paths, path)
		default:
			return paths, errors.Join(errs...)
		}
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	fire := make(chan string)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isClassFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Reset(w.debounce)
				continue
			}
			name := event.Name
			timers[name] = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- name:
				case <-w.closeCh:
				}
			})
		case name := <-fire:
			delete(timers, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
