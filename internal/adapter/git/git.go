// Package git initializes a repository for a freshly scaffolded project.
// Every operation is a blocking shell invocation and reports expected
// failures as a domain.Outcome; git is optional, so nothing here errors.
package git

import (
	"context"
	"fmt"

	"create-stencil/internal/domain"
)

const (
	cmdVersion  = "git --version"
	cmdWorkTree = "git rev-parse --is-inside-work-tree"
	cmdInit     = "git init"
	cmdAddAll   = "git add -A"

	commitMessage = "init with create-stencil"
)

// Operator runs git commands through a CommandRunner.
type Operator struct {
	runner  domain.CommandRunner
	version domain.VersionSource
	logger  domain.Logger
}

// NewOperator creates an operator. version supplies the suffix of the
// initial commit message.
func NewOperator(runner domain.CommandRunner, version domain.VersionSource, logger domain.Logger) *Operator {
	return &Operator{
		runner:  runner,
		version: version,
		logger:  logger,
	}
}

// Available reports whether git is installed and runnable.
func (o *Operator) Available() domain.Outcome {
	return o.run(cmdVersion)
}

// InsideWorkTree reports whether the working directory is already inside a
// git working tree.
func (o *Operator) InsideWorkTree() domain.Outcome {
	return o.run(cmdWorkTree)
}

// Init creates a new repository. Failure is logged as a warning.
func (o *Operator) Init() domain.Outcome {
	out := o.run(cmdInit)
	if !out.OK {
		o.logger.Warn("could not initialize git repository", "reason", out.Reason)
	}
	return out
}

// CommitAll stages every file and creates the initial commit. A failed
// stage never reaches the commit; a failed commit leaves the index staged.
func (o *Operator) CommitAll() domain.Outcome {
	if out := o.run(cmdAddAll); !out.OK {
		o.logger.Warn("could not stage files", "reason", out.Reason)
		return out
	}

	out := o.run(fmt.Sprintf("git commit -m %q", o.commitMessage()))
	if !out.OK {
		o.logger.Warn("could not create initial commit", "reason", out.Reason)
	}
	return out
}

func (o *Operator) commitMessage() string {
	if o.version == nil {
		return commitMessage
	}
	v, err := o.version.Version()
	if err != nil {
		o.logger.Debug("commit message without version", "err", err)
		return commitMessage
	}
	return fmt.Sprintf("%s v%s", commitMessage, v)
}

// run executes command, converting errors and panics from the runner into a
// failed Outcome.
func (o *Operator) run(command string) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = domain.Outcome{Reason: fmt.Sprint(r)}
		}
	}()
	if err := o.runner.Run(context.Background(), command); err != nil {
		return domain.Failed(err)
	}
	return domain.Succeeded()
}
