//go:build windows

package instance

import (
	"strconv"

	"golang.org/x/sys/windows"
)

type lockHandle windows.Handle

func tryLock(path string) (lockHandle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ, // others may read the pid, never write
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return 0, err
	}

	// Lock the first byte (non-blocking)
	ol := new(windows.Overlapped)
	err = windows.LockFileEx(
		h,
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1, 0,
		ol,
	)
	if err != nil {
		windows.CloseHandle(h)
		return 0, err
	}

	return lockHandle(h), nil
}

func writePID(h lockHandle, pid int) error {
	if _, err := windows.Seek(windows.Handle(h), 0, 0); err != nil {
		return err
	}
	var written uint32
	if err := windows.WriteFile(windows.Handle(h), []byte(strconv.Itoa(pid)), &written, nil); err != nil {
		return err
	}
	return windows.SetEndOfFile(windows.Handle(h))
}

func unlock(h lockHandle) {
	ol := new(windows.Overlapped)
	windows.UnlockFileEx(windows.Handle(h), 0, 1, 0, ol)
	windows.CloseHandle(windows.Handle(h))
}
