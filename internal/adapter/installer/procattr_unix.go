//go:build !linux && !windows

package installer

import "syscall"

// sysProcAttr puts the child in its own process group. Pdeathsig is not
// available outside Linux.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}
