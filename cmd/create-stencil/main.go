package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"create-stencil/internal/adapter/downloader"
	"create-stencil/internal/adapter/extractor"
	"create-stencil/internal/adapter/git"
	"create-stencil/internal/adapter/installer"
	"create-stencil/internal/adapter/lifecycle"
	"create-stencil/internal/adapter/logger"
	"create-stencil/internal/adapter/platform"
	"create-stencil/internal/adapter/shell"
	"create-stencil/internal/adapter/starters"
	"create-stencil/internal/adapter/version"
	"create-stencil/internal/app"
	"create-stencil/internal/domain"
)

const usage = `create-stencil CLI Help

This CLI has two operation modes, interactive and command mode.

Interactive Mode Usage:

  npm init stencil

Command Mode Usage:

  npm init stencil [starter] [project-name]

General Use Flags:

  --help - show usage examples for the CLI
  --info - print the current version of the CLI

Additional Flags:

  --run           start the project once it is created
  --pm NAME       package manager used to install (default: npm)
  --skip-git      do not initialize a git repository
  --skip-install  do not install dependencies

Additional Information: https://github.com/stenciljs/create-stencil
`

var errUsage = errors.New(usage)

type options struct {
	help        bool
	info        bool
	run         bool
	pm          string
	skipGit     bool
	skipInstall bool
	args        []string
}

func main() {
	log := logger.NewStderr()
	guard := lifecycle.NewGuard(log)
	defer guard.Recover()
	guard.Arm()

	err := run(os.Args[1:], guard, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create-stencil: %v\n", err)
	}
	guard.Shutdown(err != nil)
}

func run(argv []string, guard *lifecycle.Guard, log domain.Logger) error {
	opts, err := parseArgs(argv)
	if err != nil {
		return err
	}

	versionSrc := version.New()
	if opts.info {
		v, err := versionSrc.Version()
		if err != nil {
			return err
		}
		fmt.Printf("create-stencil: %s\n\n", v)
		return nil
	}
	if opts.help {
		fmt.Print(usage)
		return nil
	}

	plat, err := platform.New()
	if err != nil {
		return err
	}
	settings, err := plat.LoadSettings()
	if err != nil {
		return err
	}

	starterName, projectName, err := resolveInputs(opts.args, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	starter, err := starters.Lookup(starterName)
	if err != nil {
		return err
	}
	if err := validateProjectName(projectName); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	projectDir := filepath.Join(cwd, projectName)

	rt := downloader.NewHTTPRetriever(log, downloader.WithTimeout(settings.RetrievalTimeout))
	ex := extractor.NewZipExtractor(log)
	vc := git.NewOperator(shell.NewRunner(projectDir), versionSrc, log)
	pm := installer.NewPackageManager(platform.ResolvePackageManager(opts.pm, settings), guard, log, settings.InstallTimeout)

	svc := app.NewService(rt, ex, vc, pm, guard, log, os.Stdout)

	_, err = svc.Create(context.Background(), app.Config{
		Starter:     starter,
		ProjectDir:  projectDir,
		AutoRun:     opts.run,
		SkipGit:     opts.skipGit || settings.SkipGit,
		SkipInstall: opts.skipInstall || settings.SkipInstall,
		Prompt:      platform.TerminalPrompt(),
	})
	return err
}

// parseArgs accepts flags before, between and after the positional
// arguments.
func parseArgs(argv []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("create-stencil", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.help, "help", false, "show usage")
	fs.BoolVar(&opts.help, "h", false, "show usage")
	fs.BoolVar(&opts.info, "info", false, "print the version")
	fs.BoolVar(&opts.run, "run", false, "start the project once created")
	fs.StringVar(&opts.pm, "pm", "", "package manager")
	fs.BoolVar(&opts.skipGit, "skip-git", false, "do not initialize git")
	fs.BoolVar(&opts.skipInstall, "skip-install", false, "do not install dependencies")

	for {
		if err := fs.Parse(argv); err != nil {
			return options{}, fmt.Errorf("%v\n\n%w", err, errUsage)
		}
		argv = fs.Args()
		if len(argv) == 0 {
			break
		}
		opts.args = append(opts.args, argv[0])
		argv = argv[1:]
	}

	if len(opts.args) > 2 && !opts.help && !opts.info {
		return options{}, errUsage
	}
	return opts, nil
}

// resolveInputs fills in a missing starter or project name by prompting on
// in/out.
func resolveInputs(args []string, in io.Reader, out io.Writer) (string, string, error) {
	var starterName, projectName string
	if len(args) > 0 {
		starterName = args[0]
	}
	if len(args) > 1 {
		projectName = args[1]
	}
	if starterName != "" && projectName != "" {
		return starterName, projectName, nil
	}

	reader := bufio.NewReader(in)
	if starterName == "" {
		visible := starters.Visible()
		fmt.Fprintln(out, "Select a starter project:")
		for i, s := range visible {
			label := s.Description
			if s.IsCommunity {
				label += " (community)"
			}
			fmt.Fprintf(out, "  %d) %-10s %s\n", i+1, s.Name, label)
		}
		answer, err := ask(reader, out, "Starter [1]: ")
		if err != nil {
			return "", "", err
		}
		starterName, err = pickStarter(answer, visible)
		if err != nil {
			return "", "", err
		}
	}
	if projectName == "" {
		answer, err := ask(reader, out, "Project name: ")
		if err != nil {
			return "", "", err
		}
		if answer == "" {
			return "", "", errors.New("a project name is required")
		}
		projectName = answer
	}
	return starterName, projectName, nil
}

func ask(r *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// pickStarter accepts a list index, a starter name or an "owner/name" repo.
func pickStarter(answer string, visible []domain.Starter) (string, error) {
	if answer == "" {
		return visible[0].Name, nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(visible) {
			return "", fmt.Errorf("no starter numbered %d", n)
		}
		return visible[n-1].Name, nil
	}
	return answer, nil
}

func validateProjectName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid project name %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("project name %q must not contain path separators", name)
	}
	return nil
}
