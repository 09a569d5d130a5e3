package shell

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Runner executes command lines through the system shell with all stdio
// discarded, blocking until the command exits.
type Runner struct {
	dir string
}

// NewRunner creates a runner that executes commands in dir. An empty dir
// means the current working directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// Run executes command and returns an error if it could not be started or
// exited non-zero.
func (r *Runner) Run(ctx context.Context, command string) error {
	cmd := Command(ctx, command)
	cmd.Dir = r.dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}

// Command returns an exec.Cmd that runs command through the platform shell.
func Command(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}
