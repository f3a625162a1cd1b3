// Package source feeds raw observations from the platform shims into the
// status aggregator. The screen channel is a spool directory: the shim drops
// one text file per screen dump and this watcher consumes it.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/pkg/models"
)

// Sink receives one classified observation per consumed file. Implemented by
// status.Aggregator.
type Sink interface {
	Observe(source models.Source, text string, now time.Time) (*models.ChangeEvent, bool)
}

// SpoolWatcher monitors the spool directory for dropped screen-dump files,
// feeds each file's text to the sink and removes the file. Files present
// before Start are drained first so a shim racing the daemon loses nothing.
type SpoolWatcher struct {
	dir     string
	sink    Sink
	watcher *fsnotify.Watcher
	clock   func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool

	// settle gives the shim time to finish writing before the file is read.
	// Shims that write-then-rename into the spool never need it.
	settle time.Duration
}

// NewSpoolWatcher creates a watcher over dir. The directory must exist;
// fsnotify cannot watch a path that is not there yet.
func NewSpoolWatcher(dir string, sink Sink) (*SpoolWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SpoolWatcher{
		dir:     dir,
		sink:    sink,
		watcher: fsw,
		clock:   time.Now,
		ctx:     ctx,
		cancel:  cancel,
		settle:  50 * time.Millisecond,
	}, nil
}

// Start drains any pre-existing spool files and begins watching.
func (w *SpoolWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	w.drain()
	go w.watchLoop()
	return nil
}

// Stop stops the watcher.
func (w *SpoolWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	w.cancel()
	return w.watcher.Close()
}

// drain consumes files already sitting in the spool.
func (w *SpoolWatcher) drain() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", w.dir).Msg("Failed to list spool directory")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.consume(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *SpoolWatcher) watchLoop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if w.settle > 0 {
				time.Sleep(w.settle)
			}
			w.consume(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Spool watcher error")
		}
	}
}

// consume reads one spool file, feeds it to the sink and removes it. A file
// that vanished between the event and the read was taken by a concurrent
// drain and is not an error.
func (w *SpoolWatcher) consume(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("Failed to read spool file")
		}
		return
	}

	text := string(data)
	if _, committed := w.sink.Observe(models.SourceScreen, text, w.clock()); committed {
		log.Debug().Str("file", filepath.Base(path)).Msg("Screen observation committed")
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", path).Msg("Failed to remove consumed spool file")
	}
}
