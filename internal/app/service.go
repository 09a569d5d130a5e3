package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"create-stencil/internal/domain"
)

// Config holds resolved options for one scaffolding run.
type Config struct {
	Starter     domain.Starter
	ProjectDir  string
	AutoRun     bool
	SkipGit     bool
	SkipInstall bool
	// Prompt is the shell prompt glyph used in the printed next steps.
	Prompt string
}

// Result summarizes what a run accomplished.
type Result struct {
	ProjectDir     string
	Installed      bool
	GitInitialized bool
	Committed      bool
	Duration       time.Duration
}

// Service orchestrates a scaffold: verify, retrieve, extract, git init,
// install, commit.
type Service struct {
	retriever domain.Retriever
	extractor domain.Extractor
	vcs       domain.VersionControl
	installer domain.Installer
	lifecycle domain.Lifecycle
	logger    domain.Logger
	out       io.Writer
	now       func() time.Time
}

// NewService creates the application service with all dependencies injected.
func NewService(
	rt domain.Retriever,
	ex domain.Extractor,
	vc domain.VersionControl,
	in domain.Installer,
	lc domain.Lifecycle,
	lg domain.Logger,
	out io.Writer,
) *Service {
	return &Service{
		retriever: rt,
		extractor: ex,
		vcs:       vc,
		installer: in,
		lifecycle: lc,
		logger:    lg,
		out:       out,
		now:       time.Now,
	}
}

// Create scaffolds cfg.Starter into cfg.ProjectDir. The archive is staged in
// a temp directory next to the project which is handed to the lifecycle so
// it is reclaimed on every exit path.
func (s *Service) Create(ctx context.Context, cfg Config) (Result, error) {
	start := s.now()
	res := Result{ProjectDir: cfg.ProjectDir}

	if _, err := os.Stat(cfg.ProjectDir); err == nil {
		return res, fmt.Errorf("%w: %s", domain.ErrProjectExists, cfg.ProjectDir)
	}

	target := domain.StarterTarget(cfg.Starter)

	// Catalog starters are known to exist; custom repos are checked first so
	// a typo fails before anything touches the disk.
	if isCustom(cfg.Starter) && !s.retriever.Exists(ctx, target) {
		return res, fmt.Errorf("starter repository %q could not be found", cfg.Starter.Repo)
	}

	parent := filepath.Dir(cfg.ProjectDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return res, fmt.Errorf("create parent dir: %w", err)
	}
	tmpDir, err := os.MkdirTemp(parent, ".create-stencil-*")
	if err != nil {
		return res, fmt.Errorf("create temp dir: %w", err)
	}
	s.lifecycle.DesignateTempDir(tmpDir)

	s.logger.Info("downloading starter", "starter", cfg.Starter.Name)
	archive, err := s.retriever.Retrieve(ctx, target)
	if err != nil {
		return res, fmt.Errorf("download starter %q: %w", cfg.Starter.Name, err)
	}

	staged := filepath.Join(tmpDir, filepath.Base(cfg.ProjectDir))
	if err := s.extractor.Extract(archive, staged); err != nil {
		return res, fmt.Errorf("extract starter: %w", err)
	}
	if err := os.Rename(staged, cfg.ProjectDir); err != nil {
		return res, fmt.Errorf("move project into place: %w", err)
	}
	s.logger.Info("project created", "path", cfg.ProjectDir)

	if !cfg.SkipGit {
		res.GitInitialized = s.initGit()
	}

	if !cfg.SkipInstall {
		s.logger.Info("installing dependencies", "path", cfg.ProjectDir)
		if err := s.installer.Install(ctx, cfg.ProjectDir); err != nil {
			s.logger.Warn("dependency install failed, run it manually", "err", err)
		} else {
			res.Installed = true
		}
	}

	if res.GitInitialized {
		res.Committed = s.vcs.CommitAll().OK
	}

	res.Duration = s.now().Sub(start)
	s.printNextSteps(cfg, res)

	if cfg.AutoRun {
		if err := s.installer.Start(ctx, cfg.ProjectDir); err != nil {
			return res, fmt.Errorf("start project: %w", err)
		}
	}
	return res, nil
}

// initGit initializes a repository unless git is missing or the project
// already sits inside a work tree.
func (s *Service) initGit() bool {
	if out := s.vcs.Available(); !out.OK {
		s.logger.Warn("git not found, skipping repository setup")
		return false
	}
	if s.vcs.InsideWorkTree().OK {
		s.logger.Info("project is inside an existing git work tree, skipping git init")
		return false
	}
	return s.vcs.Init().OK
}

func (s *Service) printNextSteps(cfg Config, res Result) {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = "$"
	}
	name := filepath.Base(cfg.ProjectDir)

	var b strings.Builder
	fmt.Fprintf(&b, "\nCreated %s %s\n\n", name, PrintDuration(res.Duration))
	b.WriteString("Next steps:\n")
	fmt.Fprintf(&b, "  %s cd %s\n", prompt, name)
	if !res.Installed {
		fmt.Fprintf(&b, "  %s npm install\n", prompt)
	}
	fmt.Fprintf(&b, "  %s npm start\n\n", prompt)
	b.WriteString("Further reading:\n")
	fmt.Fprintf(&b, "  %s npm run build   build for production\n", prompt)
	fmt.Fprintf(&b, "  %s npm test        run the tests\n", prompt)
	if cfg.Starter.Docs != "" {
		fmt.Fprintf(&b, "\nDocs: %s\n", cfg.Starter.Docs)
	}
	_, _ = io.WriteString(s.out, b.String())
}

// PrintDuration formats d as "in 1.50 s" from one second up, else
// "in 500 ms".
func PrintDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms >= 1000 {
		return fmt.Sprintf("in %.2f s", float64(ms)/1000)
	}
	return fmt.Sprintf("in %d ms", ms)
}

func isCustom(s domain.Starter) bool {
	return strings.Contains(s.Name, "/")
}
