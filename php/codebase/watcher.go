package codebase

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dhamidi/phpcheck/analyzer"
)

// FileWatcher keeps a Codebase in sync with the file system. Events are
// collected for a short quiet period so that an editor writing several
// files at once causes a single analysis per file.
type FileWatcher struct {
	codebase *Codebase
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopCh   chan struct{}
	done     sync.WaitGroup
}

func NewFileWatcher(c *Codebase) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		codebase: c,
		watcher:  w,
		debounce: 100 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start registers every directory below the root and begins handling
// events in the background.
func (w *FileWatcher) Start() error {
	if err := w.addTree(w.codebase.RootDir()); err != nil {
		return err
	}
	w.done.Add(1)
	go w.run()
	return nil
}

func (w *FileWatcher) Stop() error {
	close(w.stopCh)
	err := w.watcher.Close()
	w.done.Wait()
	return err
}

func (w *FileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Warningf("watch %s: %s", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor"
}

func (w *FileWatcher) run() {
	defer w.done.Done()

	pending := map[string]fsnotify.Op{}
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !skipDir(info.Name()) {
						w.addTree(ev.Name)
					}
					continue
				}
			}
			if !analyzer.IsPHPFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[ev.Name] |= ev.Op
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watch: %s", err)
		case <-timer.C:
			w.flush(pending)
			clear(pending)
		}
	}
}

func (w *FileWatcher) flush(pending map[string]fsnotify.Op) {
	for path := range pending {
		if _, err := os.Stat(path); err != nil {
			log.Debugf("removed %s", path)
			w.codebase.RemoveFile(path)
			continue
		}
		log.Debugf("changed %s", path)
		if err := w.codebase.ScanFile(path); err != nil {
			log.Errorf("scan %s: %s", path, err)
		}
	}
}
