package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_Valid(t *testing.T) {
	for raw, want := range map[string]string{
		"3.0.0":         "3.0.0",
		"v4.1.2":        "4.1.2",
		" 1.0.0-rc.1\n": "1.0.0-rc.1",
	} {
		got, err := NewSource(raw).Version()
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
}

func TestVersion_Missing(t *testing.T) {
	_, err := NewSource("").Version()
	assert.ErrorIs(t, err, ErrUnknownVersion)
	assert.EqualError(t, err, "the version of this package could not be determined")
}

func TestVersion_NotSemver(t *testing.T) {
	_, err := NewSource("banana").Version()
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestNew_UsesBuildVersion(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "2.5.0"
	got, err := New().Version()
	require.NoError(t, err)
	assert.Equal(t, "2.5.0", got)
}

func stubBuildInfo(t *testing.T, mainVersion string, ok bool) {
	t.Helper()
	origVersion, origRead := Version, readBuildInfo
	t.Cleanup(func() { Version, readBuildInfo = origVersion, origRead })

	Version = ""
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		if !ok {
			return nil, false
		}
		return &debug.BuildInfo{Main: debug.Module{Path: "create-stencil", Version: mainVersion}}, true
	}
}

func TestNew_FallsBackToModuleVersion(t *testing.T) {
	stubBuildInfo(t, "v4.2.0", true)

	got, err := New().Version()
	require.NoError(t, err)
	assert.Equal(t, "4.2.0", got)
}

func TestNew_DevelBuildIsUnknown(t *testing.T) {
	stubBuildInfo(t, "(devel)", true)

	_, err := New().Version()
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestNew_NoBuildInfoIsUnknown(t *testing.T) {
	stubBuildInfo(t, "", false)

	_, err := New().Version()
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
