package domain

import (
	"context"
	"os"
)

// Retriever fetches starter archives over HTTP.
type Retriever interface {
	// Retrieve downloads the archive and returns its full body.
	Retrieve(ctx context.Context, target Target) ([]byte, error)
	// Exists reports whether a HEAD request for the archive returns 200.
	Exists(ctx context.Context, target Target) bool
}

// Extractor unpacks an archive into a target directory.
type Extractor interface {
	Extract(archive []byte, targetDir string) error
}

// VersionControl initializes and commits a fresh repository. All methods
// report expected failures through Outcome rather than errors.
type VersionControl interface {
	Available() Outcome
	InsideWorkTree() Outcome
	Init() Outcome
	CommitAll() Outcome
}

// CommandRunner executes a literal command line and reports whether it
// exited successfully.
type CommandRunner interface {
	Run(ctx context.Context, command string) error
}

// Installer runs package manager commands inside a project directory.
type Installer interface {
	Install(ctx context.Context, dir string) error
	Start(ctx context.Context, dir string) error
}

// VersionSource returns the version of this tool.
type VersionSource interface {
	Version() (string, error)
}

// Process is a spawned child that can be signalled.
type Process interface {
	Signal(sig os.Signal) error
}

// ProcessTracker records live child processes so they can be interrupted
// on shutdown. The returned release func must be called once the process
// has exited.
type ProcessTracker interface {
	Track(p Process) (release func())
}

// Lifecycle owns the temp directory and tracked children of this run.
type Lifecycle interface {
	ProcessTracker
	DesignateTempDir(path string)
}

// Logger provides structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
