//go:build windows

package config

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr keeps the --version probe from flashing a console
// window on Windows.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
