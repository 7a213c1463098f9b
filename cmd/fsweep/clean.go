package main

import (
	"fmt"
	"os"

	"github.com/fenilsonani/fsweep/internal/cleaner"
	"github.com/fenilsonani/fsweep/internal/config"
	"github.com/fenilsonani/fsweep/internal/platform"
	"github.com/fenilsonani/fsweep/internal/progress"
	"github.com/fenilsonani/fsweep/internal/reporter"
	"github.com/fenilsonani/fsweep/internal/scanner"
	"github.com/fenilsonani/fsweep/internal/security"
	"github.com/fenilsonani/fsweep/internal/ui"
	"github.com/fenilsonani/fsweep/internal/ui/styles"
	"github.com/fenilsonani/fsweep/pkg/utils"
	"github.com/spf13/cobra"
)

type cleanOptions struct {
	path        string
	force       bool
	dryRun      bool
	delete      bool
	trash       bool
	interactive bool
	output      string
	report      string
	useIndex    bool
	noIndex     bool
	indexFile   string

	targetFolders   []string
	excludePatterns []string
	protectedPaths  []string
	maxDeleteCount  int
	noDeleteLimit   bool

	yesDelete  bool
	bestEffort bool
}

func newCleanCmd(a *app, use string) *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: "Scan a workspace and clean junk folders",
		Long: `Scans the workspace for dependency, cache and build folders and prints
what would be removed. Add --delete --yes-delete to remove them, or
--trash to move them to ~/.fsweep_trash instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClean(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.path, "path", ".", "workspace directory to scan")
	f.BoolVarP(&opts.force, "force", "f", false, "skip the final confirmation prompt")
	f.BoolVar(&opts.dryRun, "dry-run", true, "preview actions without changing anything (default)")
	f.BoolVar(&opts.delete, "delete", false, "perform the cleanup (requires --yes-delete)")
	f.BoolVar(&opts.delete, "no-dry-run", false, "alias for --delete")
	f.BoolVar(&opts.trash, "trash", false, "move folders to ~/.fsweep_trash instead of deleting them")
	f.BoolVar(&opts.interactive, "interactive", false, "select which matched folders to act on")
	f.StringVar(&opts.output, "output", "table", "output format: table or json")
	f.StringVar(&opts.report, "report", "", "write a report to this file (.md, .json, .yaml or .txt)")
	f.BoolVar(&opts.useIndex, "use-index", true, "reuse cached folder sizes from the scan index")
	f.BoolVar(&opts.noIndex, "no-index", false, "do not read or write the scan index")
	f.StringVar(&opts.indexFile, "index-file", "", "scan index path (default <path>/.fsweep-index.json)")
	f.StringArrayVar(&opts.targetFolders, "target-folder", nil, "add a target folder name (repeatable)")
	f.StringArrayVar(&opts.excludePatterns, "exclude-pattern", nil, "exclude a path or name glob (repeatable)")
	f.StringArrayVar(&opts.protectedPaths, "protected-path", nil, "never scan or delete under this path (repeatable)")
	f.IntVar(&opts.maxDeleteCount, "max-delete-count", config.DefaultMaxDeleteCount, "maximum folders in one destructive run")
	f.BoolVar(&opts.noDeleteLimit, "no-delete-limit", false, "disable the --max-delete-count protection")
	f.BoolVar(&opts.yesDelete, "yes-delete", false, "required for destructive runs")
	f.BoolVar(&opts.bestEffort, "best-effort", false, "exit 0 even if some folders fail to delete")

	f.MarkHidden("no-dry-run")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "delete")
	cmd.MarkFlagsMutuallyExclusive("use-index", "no-index")

	return cmd
}

// overrides turns the config flags into the highest-precedence source.
// Scalars only count when given on the command line.
func (o *cleanOptions) overrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{
		TargetFolders:   o.targetFolders,
		ExcludePatterns: o.excludePatterns,
		ProtectedPaths:  o.protectedPaths,
	}
	if cmd.Flags().Changed("max-delete-count") {
		n := o.maxDeleteCount
		ov.MaxDeleteCount = &n
	}
	if cmd.Flags().Changed("no-delete-limit") {
		v := o.noDeleteLimit
		ov.NoDeleteLimit = &v
	}
	return ov
}

func (a *app) runClean(cmd *cobra.Command, opts *cleanOptions) error {
	format, err := reporter.ParseOutputFormat(opts.output)
	if err != nil {
		return &exitError{code: 1, msg: err.Error()}
	}
	jsonOut := format == reporter.FormatJSON

	fail := func(code int, msgFormat string, args ...interface{}) error {
		return &exitError{code: code, msg: fmt.Sprintf(msgFormat, args...), json: jsonOut}
	}

	if jsonOut && opts.interactive {
		return fail(1, "`--interactive` is not supported with `--output json`.")
	}

	if _, err := os.Stat(opts.path); err != nil {
		return fail(1, "Path %s does not exist.", opts.path)
	}
	root, err := security.ResolvePath(opts.path)
	if err != nil {
		return fail(1, "Path %s does not exist.", opts.path)
	}

	info, err := platform.GetInfo()
	if err != nil {
		return fail(1, "%v", err)
	}
	if err := security.GuardScanRoot(root, info.HomeDir); err != nil {
		return fail(1, "%v", err)
	}

	sources := config.Sources{
		GlobalPath:   config.GlobalPath(info.ConfigDir),
		LocalPath:    config.LocalPath(root),
		ExplicitPath: a.configPath,
		CLI:          opts.overrides(cmd),
	}
	cfg, err := config.Build(sources)
	if err != nil {
		return fail(1, "%v", err)
	}
	a.warnLegacyConfig(sources)

	destructive := opts.delete || (cmd.Flags().Changed("dry-run") && !opts.dryRun)
	if err := security.GuardDestructive(destructive, opts.yesDelete); err != nil {
		return fail(1, "%v", err)
	}
	if jsonOut && destructive && !opts.force {
		return fail(1, "Use `--force` with destructive runs when `--output json` is set.")
	}

	logger, err := a.openLogger(cmd)
	if err != nil {
		return fail(1, "%v", err)
	}
	defer logger.Close()

	s, err := scanner.New(root, cfg)
	if err != nil {
		return fail(1, "%v", err)
	}
	pr := progress.NewProgressReporter()
	s.SetLogger(logger)
	s.SetProgressReporter(pr)

	live := ui.NewLiveProgress(a.stderr, !jsonOut && a.stderrTTY)

	indexPath := opts.indexFile
	if indexPath == "" {
		indexPath = s.DefaultIndexPath()
	}

	stop := live.Attach(pr)
	scan := s.Scan(scanner.ScanOptions{
		UseIndex:       opts.useIndex && !opts.noIndex,
		IndexPath:      indexPath,
		DeferIndexSave: destructive,
	})
	stop()

	if scan.IndexError != nil {
		logger.Warn("Scan index: %v", scan.IndexError)
	}
	logger.Info("Scanned %d directories under %s: %d matches, %s",
		scan.DirsVisited, root, len(scan.Items), utils.FormatBytes(scan.TotalSize))

	selected := scan.Items
	if opts.interactive && len(selected) > 0 {
		selected, err = a.chooseItems(selected)
		if err != nil {
			return fail(1, "%v", err)
		}
	}

	// A destructive run leaves no index behind when a guard refuses it.
	saveIndex := func() {
		if err := s.SaveIndex(); err != nil {
			logger.Warn("Scan index: %v", err)
		}
	}

	if len(selected) == 0 {
		saveIndex()
		if jsonOut {
			payload := reporter.BuildPayload(root, nil, nil, opts.trash)
			payload.DryRun = !destructive
			return reporter.WriteJSON(a.stdout, payload)
		}
		fmt.Fprintln(a.stdout, styles.SuccessStyle.Render("Everything is clean. No junk found."))
		return nil
	}

	if destructive {
		if err := security.GuardDeleteCount(len(selected), cfg.MaxDeleteCount, cfg.NoDeleteLimit); err != nil {
			return fail(1, "%v", err)
		}
	}
	saveIndex()

	var selectedTotal int64
	for _, item := range selected {
		selectedTotal += item.Size
	}

	if !jsonOut {
		reporter.Banner(a.stdout, !destructive)
		reporter.ResultsTable(a.stdout, root, selected)
		reporter.Savings(a.stdout, !destructive, selectedTotal)
		if free := reporter.FreeSpace(root); free != "" {
			fmt.Fprintln(a.stdout, styles.DimStyle.Render("Volume: "+free))
		}
	}

	if destructive && !opts.force {
		question := "Do you want to delete these folders?"
		if opts.trash {
			question = "Move these folders to ~/" + platform.TrashDirName + "?"
		}
		if !a.prompt().Confirm(question) {
			fmt.Fprintln(a.stdout, styles.WarningStyle.Render("Aborted. No files were changed."))
			return nil
		}
	}

	cleanOpts := scanner.CleanupOptions{Mode: cleaner.ModeSimulate, RemoveAll: a.removeAll}
	if destructive {
		cleanOpts.Mode = cleaner.ModeDelete
		if opts.trash {
			cleanOpts.Mode = cleaner.ModeTrash
			cleanOpts.TrashRoot = cleaner.NewTrashRoot(info.TrashDir, a.now())
		}
	}

	stop = live.Attach(pr)
	result := s.Cleanup(selected, cleanOpts)
	stop()

	if !jsonOut {
		reporter.Completion(a.stdout, result, selectedTotal)
		reporter.SummaryTable(a.stdout, result.Stats)
		if len(result.Errors) > 0 {
			fmt.Fprintf(a.stdout, "\n%s", cleaner.FormatErrorSummary(result.Errors))
		}
	}

	payload := reporter.BuildPayload(root, selected, result, opts.trash)

	if opts.report != "" {
		if err := reporter.SaveToFile(payload, opts.report, reporter.FormatForPath(opts.report)); err != nil {
			return fail(1, "%v", err)
		}
		logger.Info("Report written to %s", opts.report)
	}

	if jsonOut {
		if err := reporter.WriteJSON(a.stdout, payload); err != nil {
			return fail(1, "%v", err)
		}
	}

	if result.Stats.Failed > 0 && !opts.bestEffort {
		// The payload already went to stdout, so the reason goes to stderr.
		return &exitError{
			code: 2,
			msg:  "One or more directories failed to delete. Use --best-effort to ignore failures.",
		}
	}

	return nil
}

// chooseItems runs the full-screen selector on a terminal and the line
// prompt otherwise
func (a *app) chooseItems(items []scanner.MatchedItem) ([]scanner.MatchedItem, error) {
	if a.stdinTTY && a.stdoutTTY {
		return ui.RunSelector(items, a.stdin, a.stdout)
	}
	return a.prompt().ChooseItems(items)
}
