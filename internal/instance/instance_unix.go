//go:build !windows

package instance

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

type lockHandle *os.File

func tryLock(path string) (lockHandle, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writePID(h lockHandle, pid int) error {
	f := (*os.File)(h)
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(pid)), 0); err != nil {
		return err
	}
	return f.Sync()
}

func unlock(h lockHandle) {
	f := (*os.File)(h)
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
	f.Close()
}
