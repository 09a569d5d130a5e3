package installer

import "os"

// group stands in for a process group; Windows cannot deliver an interrupt
// to a child, so the child is killed instead.
type group struct {
	proc *os.Process
}

func (g group) Signal(os.Signal) error {
	return g.proc.Kill()
}
