package git

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// scriptedRunner answers commands from a table. Commands missing from the
// table fail, like an unmocked command.
type scriptedRunner struct {
	responses map[string]func() error
	calls     []string
}

func (r *scriptedRunner) Run(_ context.Context, command string) error {
	r.calls = append(r.calls, command)
	fn, ok := r.responses[command]
	if !ok {
		return fmt.Errorf("unmocked command %s", command)
	}
	return fn()
}

func ok() error { return nil }

func fail(msg string) func() error {
	return func() error { return errors.New(msg) }
}

type fixedVersion struct {
	v   string
	err error
}

func (f fixedVersion) Version() (string, error) { return f.v, f.err }

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(string, ...any)      {}
func (l *recordingLogger) Info(string, ...any)       {}
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }
func (l *recordingLogger) Error(string, ...any)      {}

const mockVersion = "3.0.0"

func newOperator(responses map[string]func() error, version fixedVersion) (*Operator, *scriptedRunner, *recordingLogger) {
	runner := &scriptedRunner{responses: responses}
	logger := &recordingLogger{}
	return NewOperator(runner, version, logger), runner, logger
}

func TestAvailable(t *testing.T) {
	op, _, _ := newOperator(map[string]func() error{"git --version": ok}, fixedVersion{})
	assert.True(t, op.Available().OK)

	op, _, _ = newOperator(map[string]func() error{"git --version": fail("`git` could not be found")}, fixedVersion{})
	out := op.Available()
	assert.False(t, out.OK)
	assert.Contains(t, out.Reason, "could not be found")
}

func TestInsideWorkTree(t *testing.T) {
	op, _, _ := newOperator(map[string]func() error{"git rev-parse --is-inside-work-tree": ok}, fixedVersion{})
	assert.True(t, op.InsideWorkTree().OK)

	op, _, _ = newOperator(map[string]func() error{
		"git rev-parse --is-inside-work-tree": fail("fatal: not a git repository (or any of the parent directories): .git"),
	}, fixedVersion{})
	assert.False(t, op.InsideWorkTree().OK)
}

func TestInit_Success(t *testing.T) {
	op, _, logger := newOperator(map[string]func() error{"git init": ok}, fixedVersion{})

	assert.True(t, op.Init().OK)
	assert.Empty(t, logger.warnings)
}

func TestInit_FailureWarns(t *testing.T) {
	op, _, logger := newOperator(map[string]func() error{"git init": fail("`git init` failed for some reason")}, fixedVersion{})

	assert.False(t, op.Init().OK)
	assert.Len(t, logger.warnings, 1)
}

func TestInit_PanicWithStringIsFailure(t *testing.T) {
	op, _, _ := newOperator(map[string]func() error{
		"git init": func() error { panic("string error message") },
	}, fixedVersion{})

	out := op.Init()
	assert.False(t, out.OK)
	assert.Equal(t, "string error message", out.Reason)
}

func commitResponses() map[string]func() error {
	return map[string]func() error{
		"git add -A": ok,
		`git commit -m "init with create-stencil v` + mockVersion + `"`: ok,
		`git commit -m "init with create-stencil"`:                      ok,
	}
}

func TestCommitAll_Success(t *testing.T) {
	op, runner, _ := newOperator(commitResponses(), fixedVersion{v: mockVersion})

	assert.True(t, op.CommitAll().OK)
	assert.Equal(t, []string{
		"git add -A",
		`git commit -m "init with create-stencil v3.0.0"`,
	}, runner.calls)
}

func TestCommitAll_VersionFailureUsesPlainMessage(t *testing.T) {
	op, runner, _ := newOperator(commitResponses(), fixedVersion{err: errors.New("Could not determine version")})

	assert.True(t, op.CommitAll().OK)
	assert.Equal(t, `git commit -m "init with create-stencil"`, runner.calls[len(runner.calls)-1])
}

func TestCommitAll_NilVersionSource(t *testing.T) {
	runner := &scriptedRunner{responses: commitResponses()}
	op := NewOperator(runner, nil, &recordingLogger{})

	assert.True(t, op.CommitAll().OK)
	assert.Equal(t, `git commit -m "init with create-stencil"`, runner.calls[1])
}

func TestCommitAll_StageFailureSkipsCommit(t *testing.T) {
	op, runner, _ := newOperator(map[string]func() error{
		"git add -A": fail("git add has failed for some reason"),
		`git commit -m "init with create-stencil v3.0.0"`: fail("git commit should not have been reached!"),
	}, fixedVersion{v: mockVersion})

	assert.False(t, op.CommitAll().OK)
	assert.Equal(t, []string{"git add -A"}, runner.calls)
}

func TestCommitAll_CommitFailure(t *testing.T) {
	op, runner, logger := newOperator(map[string]func() error{
		"git add -A": ok,
		`git commit -m "init with create-stencil v3.0.0"`: fail("git commit has failed for some reason"),
	}, fixedVersion{v: mockVersion})

	assert.False(t, op.CommitAll().OK)
	assert.Len(t, runner.calls, 2)
	assert.NotEmpty(t, logger.warnings)
}
