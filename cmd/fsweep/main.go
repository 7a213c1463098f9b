package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fenilsonani/fsweep/internal/logging"
	"github.com/fenilsonani/fsweep/internal/reporter"
	"github.com/fenilsonani/fsweep/internal/ui"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// exitError carries a process exit code out of a cobra RunE. When json is
// set the message is printed as an error payload on stdout.
type exitError struct {
	code int
	msg  string
	json bool
}

func (e *exitError) Error() string {
	return e.msg
}

// app holds the streams and global flags shared by every command
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	stdinTTY  bool
	stdoutTTY bool
	stderrTTY bool

	configPath string
	verbose    bool
	logFile    string
	logLevel   string

	now       func() time.Time
	removeAll func(string) error // nil means os.RemoveAll
	prompter  *ui.Prompter
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return newApp(stdin, stdout, stderr).execute(args)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		stdinTTY:  isTerminal(stdin),
		stdoutTTY: isTerminal(stdout),
		stderrTTY: isTerminal(stderr),
		now:       time.Now,
	}
}

func (a *app) execute(args []string) int {
	stdout, stderr := a.stdout, a.stderr

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "%s %v\n", styles.ErrorStyle.Render("Error:"), err)
		return 1
	}

	if exitErr.json {
		if err := reporter.WriteJSON(stdout, reporter.NewErrorPayload(exitErr.msg, exitErr.code)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	} else {
		fmt.Fprintf(stderr, "%s %s\n", styles.ErrorStyle.Render("Error:"), exitErr.msg)
	}
	return exitErr.code
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := newCleanCmd(a, "fsweep")
	rootCmd.Short = "Clean dependency and build folders out of developer workspaces"
	rootCmd.Long = `fsweep finds junk folders such as node_modules, venv and target under a
workspace and deletes them, or moves them to ~/.fsweep_trash. Runs are
dry runs unless --delete and --yes-delete are both given.`
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file with overrides (YAML)")
	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log engine activity to stderr")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write a rotated log to this file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "minimum log level: debug, info, warn or error")

	rootCmd.AddCommand(newCleanCmd(a, "clean"))
	rootCmd.AddCommand(newSystemCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// openLogger builds the logger selected by --verbose, --log-level and
// --log-file. --verbose lowers the level to debug unless one was given.
func (a *app) openLogger(cmd *cobra.Command) (*logging.Logger, error) {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return nil, err
	}
	if a.verbose && !cmd.Flags().Changed("log-level") {
		level = logging.LevelDebug
	}
	return logging.New(logging.Options{
		File:    a.logFile,
		Level:   level,
		Verbose: a.verbose,
		Stderr:  a.stderr,
	})
}

// prompt returns the line prompter. One reader is shared so buffered
// input survives between the selection and the confirmation.
func (a *app) prompt() *ui.Prompter {
	if a.prompter == nil {
		a.prompter = ui.NewPrompter(a.stdin, a.stdout)
	}
	return a.prompter
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
