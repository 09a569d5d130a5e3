package app

import (
	"context"

	"create-stencil/internal/domain"
)

// mockRetriever records calls and returns configured values.
type mockRetriever struct {
	exists        bool
	archive       []byte
	retrieveErr   error
	existsCalled  bool
	retrieveCalls []domain.Target
}

func (m *mockRetriever) Retrieve(_ context.Context, target domain.Target) ([]byte, error) {
	m.retrieveCalls = append(m.retrieveCalls, target)
	return m.archive, m.retrieveErr
}

func (m *mockRetriever) Exists(context.Context, domain.Target) bool {
	m.existsCalled = true
	return m.exists
}

// mockExtractor runs extractFn, which defaults to creating the target dir.
type mockExtractor struct {
	extractFn  func(archive []byte, target string) error
	called     bool
	lastTarget string
}

func (m *mockExtractor) Extract(archive []byte, target string) error {
	m.called = true
	m.lastTarget = target
	return m.extractFn(archive, target)
}

// mockVCS returns configured outcomes and records the order of calls.
type mockVCS struct {
	available bool
	inside    bool
	init      bool
	commit    bool
	calls     []string
	order     *[]string
}

func (m *mockVCS) record(call string) {
	m.calls = append(m.calls, call)
	if m.order != nil {
		*m.order = append(*m.order, call)
	}
}

func (m *mockVCS) Available() domain.Outcome {
	m.record("available")
	return domain.Outcome{OK: m.available}
}

func (m *mockVCS) InsideWorkTree() domain.Outcome {
	m.record("inside")
	return domain.Outcome{OK: m.inside}
}

func (m *mockVCS) Init() domain.Outcome {
	m.record("init")
	return domain.Outcome{OK: m.init}
}

func (m *mockVCS) CommitAll() domain.Outcome {
	m.record("commit")
	return domain.Outcome{OK: m.commit}
}

// mockInstaller records calls into the shared order log.
type mockInstaller struct {
	installErr error
	startErr   error
	installDir string
	started    bool
	order      *[]string
}

func (m *mockInstaller) Install(_ context.Context, dir string) error {
	m.installDir = dir
	if m.order != nil {
		*m.order = append(*m.order, "install")
	}
	return m.installErr
}

func (m *mockInstaller) Start(context.Context, string) error {
	m.started = true
	return m.startErr
}

// mockLifecycle records the designated temp dir.
type mockLifecycle struct {
	tmpDir  string
	tracked int
}

func (m *mockLifecycle) DesignateTempDir(path string) { m.tmpDir = path }

func (m *mockLifecycle) Track(domain.Process) func() {
	m.tracked++
	return func() { m.tracked-- }
}

// mockLogger collects messages.
type mockLogger struct {
	messages []string
}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  { m.messages = append(m.messages, msg) }
func (m *mockLogger) Warn(msg string, args ...any)  { m.messages = append(m.messages, "WARN: "+msg) }
func (m *mockLogger) Error(msg string, args ...any) { m.messages = append(m.messages, "ERROR: "+msg) }
