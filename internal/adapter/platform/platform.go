package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"create-stencil/internal/adapter/downloader"
	"create-stencil/internal/adapter/installer"
)

const (
	EnvConfig         = "CREATE_STENCIL_CONFIG"
	EnvPackageManager = "CREATE_STENCIL_PACKAGE_MANAGER"

	defaultPackageManager = "npm"
)

// Settings are the tunables read from the optional config file.
type Settings struct {
	RetrievalTimeout time.Duration
	InstallTimeout   time.Duration
	PackageManager   string
	SkipGit          bool
	SkipInstall      bool
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		RetrievalTimeout: downloader.DefaultTimeout,
		InstallTimeout:   installer.DefaultInstallTimeout,
		PackageManager:   defaultPackageManager,
	}
}

type fileConfig struct {
	RetrievalTimeout string `toml:"retrieval_timeout"`
	InstallTimeout   string `toml:"install_timeout"`
	PackageManager   string `toml:"package_manager"`
	SkipGit          bool   `toml:"skip_git"`
	SkipInstall      bool   `toml:"skip_install"`
}

// Platform resolves paths and settings for the current user.
type Platform struct {
	homeDir string
}

// New creates a Platform rooted at the current user's home directory.
func New() (*Platform, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &Platform{homeDir: home}, nil
}

// ConfigPath returns the config file location, checking env then default
// (~/.config/create-stencil/config.toml).
func (p *Platform) ConfigPath() string {
	if v := os.Getenv(EnvConfig); v != "" {
		return v
	}
	return filepath.Join(p.homeDir, ".config", "create-stencil", "config.toml")
}

// LoadSettings reads ConfigPath over the defaults. A missing file is not an
// error.
func (p *Platform) LoadSettings() (Settings, error) {
	return LoadSettingsFile(p.ConfigPath())
}

// LoadSettingsFile reads settings from path over the defaults.
func LoadSettingsFile(path string) (Settings, error) {
	cfg := DefaultSettings()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("retrieval_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RetrievalTimeout))
		if err != nil {
			return Settings{}, fmt.Errorf("parse retrieval_timeout: %w", err)
		}
		cfg.RetrievalTimeout = d
	}

	if meta.IsDefined("install_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.InstallTimeout))
		if err != nil {
			return Settings{}, fmt.Errorf("parse install_timeout: %w", err)
		}
		cfg.InstallTimeout = d
	}

	if meta.IsDefined("package_manager") {
		if pm := strings.TrimSpace(raw.PackageManager); pm != "" {
			cfg.PackageManager = pm
		}
	}

	if meta.IsDefined("skip_git") {
		cfg.SkipGit = raw.SkipGit
	}

	if meta.IsDefined("skip_install") {
		cfg.SkipInstall = raw.SkipInstall
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Settings{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	return cfg, nil
}

// ResolvePackageManager returns the package manager, checking flag, env,
// then settings.
func ResolvePackageManager(flagValue string, s Settings) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvPackageManager); v != "" {
		return v
	}
	if s.PackageManager != "" {
		return s.PackageManager
	}
	return defaultPackageManager
}

// IsWindows reports whether we are running on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// TerminalPrompt returns the shell prompt glyph shown in printed commands.
func TerminalPrompt() string {
	if IsWindows() {
		return ">"
	}
	return "$"
}
