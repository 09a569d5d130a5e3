package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStarterNotFound is returned when a starter name is not in the catalog.
	ErrStarterNotFound = errors.New("starter does not exist")
	// ErrProjectExists is returned when the project directory is already present.
	ErrProjectExists = errors.New("project directory already exists")
)

// Starter describes a project template hosted in a code-hosting repository.
// Repo is always in "owner/name" form; the host is resolved separately.
type Starter struct {
	Name        string
	Repo        string
	Description string
	Docs        string
	Hidden      bool
	IsCommunity bool
}

// StarterNotFoundError names a starter missing from the catalog. It matches
// ErrStarterNotFound with errors.Is.
type StarterNotFoundError struct {
	Name string
}

func (e *StarterNotFoundError) Error() string {
	return fmt.Sprintf("Starter %q does not exist.", e.Name)
}

func (e *StarterNotFoundError) Is(target error) bool {
	return target == ErrStarterNotFound
}

// Target is either a starter or a literal archive URL. Exactly one of the
// two is set; use StarterTarget or URLTarget to build one.
type Target struct {
	starter *Starter
	url     string
}

// StarterTarget builds a retrieval target for a starter descriptor.
func StarterTarget(s Starter) Target {
	return Target{starter: &s}
}

// URLTarget builds a retrieval target for a literal URL.
func URLTarget(rawURL string) Target {
	return Target{url: rawURL}
}

// Starter returns the descriptor and true when the target wraps a starter.
func (t Target) Starter() (Starter, bool) {
	if t.starter == nil {
		return Starter{}, false
	}
	return *t.starter, true
}

// URL returns the literal URL of a URL target, or "" for a starter target.
func (t Target) URL() string {
	return t.url
}

func (t Target) String() string {
	if t.starter != nil {
		return t.starter.Repo
	}
	return t.url
}

// RetrievalError reports a failed archive retrieval. StatusCode is zero when
// the request never produced a response.
type RetrievalError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retrieve %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("retrieve %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Outcome is the result of an operation whose failure is expected and
// recoverable. Reason carries a diagnostic when OK is false.
type Outcome struct {
	OK     bool
	Reason string
}

// Succeeded returns a successful outcome.
func Succeeded() Outcome {
	return Outcome{OK: true}
}

// Failed returns a failed outcome carrying the cause as its reason.
func Failed(err error) Outcome {
	if err == nil {
		return Outcome{}
	}
	return Outcome{Reason: err.Error()}
}
