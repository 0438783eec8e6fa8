//go:build windows

package process

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr hides the console window the engine would otherwise open
// on Windows.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
