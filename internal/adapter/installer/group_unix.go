//go:build !windows

package installer

import (
	"os"

	"golang.org/x/sys/unix"
)

// group signals a child's whole process group.
type group struct {
	proc *os.Process
}

func (g group) Signal(sig os.Signal) error {
	s, ok := sig.(unix.Signal)
	if !ok {
		s = unix.SIGINT
	}
	if err := unix.Kill(-g.proc.Pid, s); err != nil {
		return g.proc.Signal(s)
	}
	return nil
}
