package watch

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	first  = "LeagueClientUx:1234:54835:C0DWT6VDJ2H50HFJ2BESh:https"
	second = "LeagueClientUx:5678:61002:9aXxLSy3wWbq0zG7Vd1k2Q:https"
)

type recorder struct {
	mu      sync.Mutex
	changes []lockfile.Descriptor
	gone    int
}

func (r *recorder) onChange(d lockfile.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, d)
}

func (r *recorder) onGone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gone++
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes), r.gone
}

func (r *recorder) last() lockfile.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes[len(r.changes)-1]
}

func startWatcher(t *testing.T, dir string) (*Watcher, *recorder) {
	t.Helper()

	rec := &recorder{}
	w := New(Config{Dir: dir, OnChange: rec.onChange, OnGone: rec.onGone})
	require.NoError(t, w.Start(t.Context()))
	t.Cleanup(w.Stop)
	return w, rec
}

func writeLockfile(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lockfile.FileName), []byte(contents), 0o644))
}

func TestWatcher_InitialLockfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLockfile(t, dir, first)

	w, rec := startWatcher(t, dir)

	changes, _ := rec.counts()
	require.Equal(t, 1, changes, "existing lockfile is reported by Start")
	assert.EqualValues(t, 1234, rec.last().PID)

	current, ok := w.Current()
	assert.True(t, ok)
	assert.Equal(t, rec.last(), current)
}

func TestWatcher_Lifecycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, rec := startWatcher(t, dir)

	_, ok := w.Current()
	assert.False(t, ok)

	writeLockfile(t, dir, first)
	require.Eventually(t, func() bool {
		changes, _ := rec.counts()
		return changes == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 54835, rec.last().Port)

	require.NoError(t, os.Remove(filepath.Join(dir, lockfile.FileName)))
	require.Eventually(t, func() bool {
		_, gone := rec.counts()
		return gone == 1
	}, 5*time.Second, 10*time.Millisecond)

	_, ok = w.Current()
	assert.False(t, ok)

	writeLockfile(t, dir, second)
	require.Eventually(t, func() bool {
		changes, _ := rec.counts()
		return changes == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 5678, rec.last().PID)
	assert.EqualValues(t, 61002, rec.last().Port)
}

func TestWatcher_SameContentsReportedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLockfile(t, dir, first)
	_, rec := startWatcher(t, dir)

	writeLockfile(t, dir, first)
	writeLockfile(t, dir, first)

	writeLockfile(t, dir, second)

	require.Eventually(t, func() bool {
		changes, _ := rec.counts()
		return changes >= 2
	}, 5*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	changes, gone := rec.counts()
	assert.Equal(t, 2, changes)
	assert.Zero(t, gone)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lockfile.bak"), []byte(first), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "lockfile.bak")))

	time.Sleep(100 * time.Millisecond)
	changes, gone := rec.counts()
	assert.Zero(t, changes)
	assert.Zero(t, gone)
}

func TestWatcher_MissingDir(t *testing.T) {
	t.Parallel()

	w := New(Config{Dir: filepath.Join(t.TempDir(), "absent")})
	require.Error(t, w.Start(t.Context()))

	// Stop without a successful Start is a no-op.
	w.Stop()
}

func TestAlive(t *testing.T) {
	t.Parallel()

	alive, err := Alive(t.Context(), lockfile.Descriptor{PID: uint32(os.Getpid())})
	require.NoError(t, err)
	assert.True(t, alive)

	alive, err = Alive(t.Context(), lockfile.Descriptor{PID: 0})
	require.NoError(t, err)
	assert.False(t, alive)

	alive, err = Alive(t.Context(), lockfile.Descriptor{PID: math.MaxInt32 + 1})
	require.NoError(t, err)
	assert.False(t, alive)
}
