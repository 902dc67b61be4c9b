//go:build windows

package locate

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr keeps WMIC from flashing a console window when the connector
// runs from a GUI session.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
