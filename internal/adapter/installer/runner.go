package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"create-stencil/internal/adapter/shell"
	"create-stencil/internal/domain"
)

// DefaultInstallTimeout bounds "install"; zero disables the bound.
const DefaultInstallTimeout = 10 * time.Minute

// waitDelay is how long an interrupted child gets before it is killed.
const waitDelay = 10 * time.Second

// PackageManager runs package manager commands as tracked child processes.
type PackageManager struct {
	name           string
	tracker        domain.ProcessTracker
	logger         domain.Logger
	installTimeout time.Duration
	stdout         io.Writer
	stderr         io.Writer
}

// NewPackageManager creates a runner for the named package manager binary
// (npm, pnpm, yarn). Every child is registered with tracker while alive.
func NewPackageManager(name string, tracker domain.ProcessTracker, logger domain.Logger, installTimeout time.Duration) *PackageManager {
	return &PackageManager{
		name:           name,
		tracker:        tracker,
		logger:         logger,
		installTimeout: installTimeout,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
	}
}

// Install runs "<pm> install" in dir with its output discarded.
func (m *PackageManager) Install(ctx context.Context, dir string) error {
	if m.installTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.installTimeout)
		defer cancel()
	}
	err := m.run(ctx, dir, false, "install")
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s install timed out after %s: %w", m.name, m.installTimeout, ctx.Err())
	}
	return err
}

// Start runs "<pm> start" in dir with its output attached to ours. It
// blocks until the child exits.
func (m *PackageManager) Start(ctx context.Context, dir string) error {
	return m.run(ctx, dir, true, "start")
}

func (m *PackageManager) run(ctx context.Context, dir string, attach bool, args ...string) error {
	line := m.name + " " + strings.Join(args, " ")

	cmd := shell.Command(ctx, line)
	cmd.Dir = dir
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = nil
	if attach {
		cmd.Stdout = m.stdout
		cmd.Stderr = m.stderr
	}
	cmd.Cancel = func() error {
		return group{proc: cmd.Process}.Signal(os.Interrupt)
	}
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", line, err)
	}
	release := m.tracker.Track(group{proc: cmd.Process})
	defer release()

	m.logger.Debug("child started", "cmd", line, "pid", cmd.Process.Pid, "dir", dir)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d", line, exitErr.ExitCode())
		}
		return fmt.Errorf("%s: %w", line, err)
	}
	return nil
}
