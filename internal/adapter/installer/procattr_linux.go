package installer

import "syscall"

// sysProcAttr puts the child in its own process group so an interrupt
// reaches everything the package manager spawns. Pdeathsig is a Linux-only
// safety net: if create-stencil dies unexpectedly, the kernel sends SIGTERM
// to the direct child.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGTERM,
	}
}
