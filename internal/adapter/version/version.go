package version

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrUnknownVersion is returned when the build carries no usable version.
var ErrUnknownVersion = errors.New("the version of this package could not be determined")

// Version is set at build time:
//
//	go build -ldflags "-X create-stencil/internal/adapter/version.Version=4.1.0"
var Version = ""

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Source reports a semantic version without the leading "v".
type Source struct {
	raw string
}

// New returns a Source for the build-time Version, falling back to the main
// module version recorded by "go install module@version".
func New() *Source {
	if Version != "" {
		return &Source{raw: Version}
	}
	return &Source{raw: moduleVersion()}
}

func moduleVersion() string {
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}

// NewSource returns a Source for an explicit version string.
func NewSource(raw string) *Source {
	return &Source{raw: raw}
}

// Version returns the version, or ErrUnknownVersion when it is missing or not
// valid semver.
func (s *Source) Version() (string, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s.raw), "v")
	if v == "" {
		return "", ErrUnknownVersion
	}
	if !semver.IsValid("v" + v) {
		return "", fmt.Errorf("%w: %q is not a semantic version", ErrUnknownVersion, s.raw)
	}
	return v, nil
}
