// Package watch follows the lockfile of an installation directory and
// reports each new Descriptor as the client restarts.
package watch

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
)

// Config configures a Watcher.
type Config struct {
	// Dir is the installation directory holding the lockfile.
	Dir    string
	Logger log.Logger

	// OnChange receives every descriptor that differs from the previous one.
	OnChange func(lockfile.Descriptor)

	// OnGone is called when the lockfile is removed, i.e. the client exited.
	OnGone func()
}

// Watcher re-reads the lockfile whenever it is written.
type Watcher struct {
	cfg    Config
	path   string
	logger log.Logger

	mu      sync.Mutex
	current lockfile.Descriptor
	have    bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config) *Watcher {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Watcher{
		cfg:    cfg,
		path:   filepath.Join(cfg.Dir, lockfile.FileName),
		logger: log.With(logger, "component", "watch"),
	}
}

// Start begins watching and reports the current lockfile, if any, before
// returning. Events are delivered from a single goroutine until Stop is
// called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating fsnotify watcher")
	}

	// The client deletes and recreates the lockfile, so watch the directory.
	if err := fsw.Add(w.cfg.Dir); err != nil {
		fsw.Close()
		return errors.Wrapf(err, "watching %s", w.cfg.Dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	level.Info(w.logger).Log("msg", "watching lockfile", "path", w.path)
	w.refresh()

	go w.loop(ctx, fsw)
	return nil
}

// Stop ends watching and waits for the event goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Current returns the last descriptor seen and whether the lockfile exists.
func (w *Watcher) Current() (lockfile.Descriptor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.have
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			level.Debug(w.logger).Log("msg", "watch stopped")
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				w.refresh()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				w.gone()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			level.Warn(w.logger).Log("msg", "fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) refresh() {
	d, err := lockfile.Read(w.path)
	if err != nil {
		// Missing or half written. The next event retries.
		level.Debug(w.logger).Log("msg", "lockfile not usable yet", "err", err)
		return
	}

	w.mu.Lock()
	if w.have && w.current == d {
		w.mu.Unlock()
		return
	}
	w.current = d
	w.have = true
	w.mu.Unlock()

	level.Info(w.logger).Log("msg", "lockfile changed", "pid", d.PID, "port", d.Port)
	if w.cfg.OnChange != nil {
		w.cfg.OnChange(d)
	}
}

func (w *Watcher) gone() {
	w.mu.Lock()
	had := w.have
	w.have = false
	w.mu.Unlock()

	if !had {
		return
	}

	level.Info(w.logger).Log("msg", "lockfile removed")
	if w.cfg.OnGone != nil {
		w.cfg.OnGone()
	}
}

// Alive reports whether the process that wrote d is still running. A false
// result means d is stale.
func Alive(ctx context.Context, d lockfile.Descriptor) (bool, error) {
	if d.PID == 0 || d.PID > 1<<31-1 {
		return false, nil
	}
	exists, err := process.PidExistsWithContext(ctx, int32(d.PID))
	if err != nil {
		return false, errors.Wrapf(err, "checking pid %d", d.PID)
	}
	return exists, nil
}
