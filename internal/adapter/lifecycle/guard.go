// Package lifecycle owns process-wide shutdown for a scaffolding run: the
// temp directory to reclaim, the child processes to interrupt and the exit
// code to leave with.
//
// A Guard is created once in main and injected wherever children are
// spawned. Every termination path funnels into Shutdown, which runs at most
// once:
//
//	normal completion    Shutdown(false)  exit 0
//	panic (via Recover)  Shutdown(true)   exit 1
//	SIGINT               Shutdown(false)  exit 0
//	SIGTERM              Shutdown(false)  exit 0
package lifecycle

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"create-stencil/internal/domain"
)

// State is the lifecycle phase of a Guard.
type State int

const (
	Uninitialized State = iota
	Armed
	Terminating
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Armed:
		return "armed"
	case Terminating:
		return "terminating"
	default:
		return "unknown"
	}
}

type entry struct {
	proc domain.Process
}

// Guard tracks the temp directory and live children of this process.
type Guard struct {
	logger domain.Logger

	mu       sync.Mutex
	state    State
	tmpDir   string
	children []*entry

	armOnce      sync.Once
	shutdownOnce sync.Once
	done         chan struct{}

	// Replaced in tests.
	notify func(c chan<- os.Signal, sig ...os.Signal)
	exit   func(code int)
	flush  func()
}

// NewGuard creates an unarmed Guard.
func NewGuard(logger domain.Logger) *Guard {
	return &Guard{
		logger: logger,
		done:   make(chan struct{}),
		notify: signal.Notify,
		exit:   os.Exit,
		flush:  flushStdio,
	}
}

// State returns the current lifecycle phase.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// DesignateTempDir records the directory removed at shutdown and arms the
// signal handlers. A later call replaces the path; an empty path clears it.
func (g *Guard) DesignateTempDir(path string) {
	g.mu.Lock()
	g.tmpDir = path
	g.mu.Unlock()
	g.Arm()
}

// TempDir returns the designated temp directory, if any.
func (g *Guard) TempDir() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tmpDir
}

// Arm registers the SIGINT and SIGTERM handlers. Only the first call has an
// effect.
func (g *Guard) Arm() {
	g.armOnce.Do(func() {
		g.mu.Lock()
		if g.state == Uninitialized {
			g.state = Armed
		}
		g.mu.Unlock()

		sigCh := make(chan os.Signal, 1)
		g.notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			g.logger.Info("received signal, shutting down", "signal", sig)
			g.Shutdown(false)
		}()
	})
}

// Track adds a spawned child to the live set. The returned release removes
// it again and must be called once the child has exited; calling it more
// than once is harmless. A child tracked once shutdown has begun is
// interrupted immediately, since the shutdown sweep may already have run.
func (g *Guard) Track(p domain.Process) (release func()) {
	e := &entry{proc: p}
	g.mu.Lock()
	g.children = append(g.children, e)
	if g.state == Terminating {
		if err := p.Signal(os.Interrupt); err != nil {
			g.logger.Debug("interrupt late child failed", "err", err)
		}
	}
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			for i, c := range g.children {
				if c == e {
					g.children = append(g.children[:i], g.children[i+1:]...)
					return
				}
			}
		})
	}
}

// Tracked returns the number of live tracked children.
func (g *Guard) Tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.children)
}

// TerminateAll sends an interrupt to every tracked child. It neither waits
// for them nor clears the set; each child leaves the set through its own
// release.
func (g *Guard) TerminateAll() {
	g.mu.Lock()
	procs := make([]domain.Process, 0, len(g.children))
	for _, c := range g.children {
		procs = append(procs, c.proc)
	}
	g.mu.Unlock()

	for _, p := range procs {
		if err := p.Signal(os.Interrupt); err != nil {
			g.logger.Debug("interrupt child failed", "err", err)
		}
	}
}

// Shutdown removes the temp directory, interrupts tracked children and exits
// with 1 if hadError, else 0. Only the first call does anything; concurrent
// and later callers block until that shutdown has finished.
func (g *Guard) Shutdown(hadError bool) {
	g.shutdownOnce.Do(func() {
		g.mu.Lock()
		g.state = Terminating
		dir := g.tmpDir
		g.mu.Unlock()

		if dir != "" {
			if err := RemoveTree(dir); err != nil {
				g.logger.Debug("temp dir cleanup incomplete", "path", dir, "err", err)
			}
		}
		g.TerminateAll()

		code := 0
		if hadError {
			code = 1
		}
		g.flush()
		g.exit(code)
		close(g.done)
	})
	<-g.done
}

// Recover turns a panic into an error shutdown. Use it as the first deferred
// call in main:
//
//	defer guard.Recover()
func (g *Guard) Recover() {
	if r := recover(); r != nil {
		g.logger.Error("unexpected failure", "panic", r)
		g.Shutdown(true)
	}
}

// RemoveTree deletes path depth-first, children before their parent. A
// missing path is not an error and symlinks are removed, not followed.
// Removal continues past failures and returns them joined.
func RemoveTree(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return os.Remove(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if err := RemoveTree(filepath.Join(path, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func flushStdio() {
	_ = os.Stdout.Sync()
	_ = os.Stderr.Sync()
}
