// Package cli provides the testrig command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/testrig/internal/containers"
	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/logging"
	"github.com/AndreyAkinshin/testrig/internal/output"
	"github.com/AndreyAkinshin/testrig/internal/project"
)

// Version is set at build time.
var Version = "dev"

// globalOptions holds the persistent root flags.
type globalOptions struct {
	headless   bool
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
	quiet      bool
}

// app carries what commands share. Tests replace its collaborators.
type app struct {
	opts  globalOptions
	out   *output.Writer
	stdin io.Reader
	// logOutput receives structured logs.
	logOutput io.Writer
	getwd     func() (string, error)
	// exec runs external commands (installers, frameworks).
	exec framework.Exec
	// newCollaborator builds the framework collaborator for a run.
	newCollaborator func(name string) (framework.Collaborator, error)
	lookPath        func(file string) (string, error)
	// probe checks the Docker daemon; nil runs docker info.
	probe containers.Probe
}

func newApp(out *output.Writer, stdin io.Reader) *app {
	a := &app{
		out:       out,
		stdin:     stdin,
		logOutput: os.Stderr,
		getwd:     os.Getwd,
		exec:      framework.DefaultExec,
		lookPath:  exec.LookPath,
	}
	a.newCollaborator = func(name string) (framework.Collaborator, error) {
		return framework.New(name, a.exec)
	}
	return a
}

// exitCodeError ends a command with a specific exit code and no message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitCodeError) ExitCode() int {
	return e.code
}

// errTestsFailed is returned when a run completes with failing tests.
var errTestsFailed = &exitCodeError{code: testrigerrors.ExitRuntimeError}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newApp(output.New(), os.Stdin).run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return testrigerrors.ExitSuccess
	}

	var silent *exitCodeError
	if errors.As(err, &silent) {
		return silent.code
	}

	a.out.ErrorPrefix("%v", err)
	if isUsageError(err) {
		return testrigerrors.ExitConfigError
	}
	return testrigerrors.GetExitCode(err)
}

// isUsageError recognizes cobra's argument errors, which carry no type.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires at least", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "testrig",
		Short: "Test scaffolding and parallel test runs for JavaScript and Python projects",
		Long: `testrig sets up test infrastructure, generates test files from component
sources and runs them sequentially or in parallel through vitest, jest or
pytest, reporting one normalized summary.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out.Out())
	root.SetVersionTemplate("testrig {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return testrigerrors.Config(err.Error())
	})

	flags := root.PersistentFlags()
	flags.BoolVar(&a.opts.headless, "headless", false, "never prompt; use defaults and flags only")
	flags.BoolVar(&a.opts.headless, "non-interactive", false, "alias for --headless")
	flags.StringVar(&a.opts.configPath, "config", "", "path to test-rig.config.yaml")
	flags.StringVar(&a.opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&a.opts.logFormat, "log-format", "text", "log format: text or json")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&a.opts.quiet, "quiet", "q", false, "print errors and results only")

	root.AddCommand(
		a.setupCommand(),
		a.generateCommand(),
		a.runCommand(),
		a.coverageCommand(),
		a.doctorCommand(),
		a.serveCommand(),
		a.reportCommand(),
	)
	return root
}

// setup applies the global flags before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(a.opts.logLevel)
	if err != nil {
		return testrigerrors.Config(err.Error())
	}
	format, err := logging.ParseFormat(a.opts.logFormat)
	if err != nil {
		return testrigerrors.Config(err.Error())
	}
	logging.InitForCLI(level, format, a.logOutput)

	if a.opts.noColor {
		a.out.SetColor(false)
	}
	a.out.SetQuiet(a.opts.quiet)

	if !a.opts.headless && project.IsAutomated() {
		logging.For("cli").Debug("automated environment detected; running headless", "command", cmd.Name())
		a.opts.headless = true
	}
	return nil
}

// loadProject resolves the project root from the working directory and
// loads its config.
func (a *app) loadProject() (*project.Project, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, err
	}
	return project.Load(cwd, a.opts.configPath)
}
