package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads configuration when the config file changes on disk.
// Long-running modes (dashboard) use it to pick up tuning changes without a
// restart.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *log.Logger
	onLoad  func(*Config)

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Watch starts watching the config file and invokes onLoad with the freshly
// loaded configuration after every change. Stop must be called to release
// the watcher.
func Watch(logger *log.Logger, onLoad func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which would drop a watch on the file itself.
	if err := fw.Add(Dir()); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		path:    Path(),
		logger:  logger,
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load()
			if err != nil {
				w.logger.Printf("Config reload failed: %v", err)
				continue
			}
			w.logger.Printf("Config reloaded from %s", w.path)
			w.onLoad(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("Config watcher error: %v", err)
		}
	}
}
