//go:build !windows

package config

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
