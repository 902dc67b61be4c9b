// Package instance keeps a single lockfile watcher running per user, so two
// -watch processes do not both report every client restart.
package instance

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const pidFileName = "lcu-connector.pid"

// ErrAlreadyRunning is returned by Acquire when another process holds the lock.
var ErrAlreadyRunning = errors.New("another lcu-connector watcher is running")

// Lock represents a held instance lock.
type Lock struct {
	handle lockHandle
	path   string
}

// DefaultDir returns the per-user directory that holds the lock.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "finding user cache directory")
	}
	return filepath.Join(dir, "lcu-connector"), nil
}

// Acquire takes the exclusive instance lock in dir, creating dir if needed.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	path := filepath.Join(dir, pidFileName)

	h, err := tryLock(path)
	if err != nil {
		if pid, ok := holder(path); ok {
			return nil, errors.Wrapf(ErrAlreadyRunning, "pid %d", pid)
		}
		return nil, errors.WithStack(ErrAlreadyRunning)
	}

	// The pid is only for diagnostics; the lock is already held.
	if err := writePID(h, os.Getpid()); err != nil {
		unlock(h)
		return nil, errors.Wrapf(err, "writing %s", path)
	}

	return &Lock{handle: h, path: path}, nil
}

// Release releases the instance lock.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	unlock(l.handle)
	os.Remove(l.path)
}

// holder reads the pid recorded by the current lock owner.
func holder(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
