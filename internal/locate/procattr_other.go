//go:build !windows

package locate

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
