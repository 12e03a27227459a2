package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"krait/internal/linter"
	"krait/internal/observ"
	"krait/internal/report"
	"krait/internal/settings"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Lint Python and Starlark files",
	Long: `Lint the given files or directories (the current directory by default).
Configuration is read from krait.toml, .krait.toml or the [tool.krait]
table of pyproject.toml, searched upwards from the first path.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSlice("select", nil, "rule selectors to enable, replacing the configured selection")
	checkCmd.Flags().StringSlice("extend-select", nil, "rule selectors to enable in addition to the configured ones")
	checkCmd.Flags().StringSlice("ignore", nil, "rule selectors to disable")
	checkCmd.Flags().String("config", "", "configuration file (skips discovery)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("no-cache", false, "disable the result cache")
	checkCmd.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/krait)")
	checkCmd.Flags().String("output-format", "text", "output format (text|json)")
	checkCmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|basename)")
	checkCmd.Flags().Bool("statistics", false, "print per-rule counts instead of diagnostics")
	checkCmd.Flags().Bool("show-source", false, "print the offending source line under each diagnostic")
	checkCmd.Flags().Bool("show-fixes", false, "print the edits of available fixes")
	checkCmd.Flags().Bool("exit-zero", false, "exit with status 0 even when diagnostics are reported")
	checkCmd.Flags().BoolP("watch", "w", false, "re-run on file changes")
	checkCmd.Flags().String("ui", "auto", "progress view on stderr (auto|on|off)")
}

type checkOptions struct {
	overrides  settings.Overrides
	config     string
	jobs       int
	noCache    bool
	format     report.Format
	pathMode   report.PathMode
	statistics bool
	showSource bool
	showFixes  bool
	exitZero   bool
	watch      bool
	ui         uiMode
	color      string
	quiet      bool
	timings    bool
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var (
		o   checkOptions
		err error
	)
	flags := cmd.Flags()
	if o.overrides.Select, err = flags.GetStringSlice("select"); err != nil {
		return o, fmt.Errorf("failed to get select flag: %w", err)
	}
	if o.overrides.ExtendSelect, err = flags.GetStringSlice("extend-select"); err != nil {
		return o, fmt.Errorf("failed to get extend-select flag: %w", err)
	}
	if o.overrides.Ignore, err = flags.GetStringSlice("ignore"); err != nil {
		return o, fmt.Errorf("failed to get ignore flag: %w", err)
	}
	if o.overrides.CacheDir, err = flags.GetString("cache-dir"); err != nil {
		return o, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if o.config, err = flags.GetString("config"); err != nil {
		return o, fmt.Errorf("failed to get config flag: %w", err)
	}
	if o.jobs, err = flags.GetInt("jobs"); err != nil {
		return o, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if o.jobs < 0 {
		return o, fmt.Errorf("--jobs must be non-negative, got %d", o.jobs)
	}
	if o.noCache, err = flags.GetBool("no-cache"); err != nil {
		return o, fmt.Errorf("failed to get no-cache flag: %w", err)
	}

	formatStr, err := flags.GetString("output-format")
	if err != nil {
		return o, fmt.Errorf("failed to get output-format flag: %w", err)
	}
	if o.format, err = report.ParseFormat(formatStr); err != nil {
		return o, err
	}
	pathModeStr, err := flags.GetString("path-mode")
	if err != nil {
		return o, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if o.pathMode, err = parsePathMode(pathModeStr); err != nil {
		return o, err
	}

	if o.statistics, err = flags.GetBool("statistics"); err != nil {
		return o, fmt.Errorf("failed to get statistics flag: %w", err)
	}
	if o.showSource, err = flags.GetBool("show-source"); err != nil {
		return o, fmt.Errorf("failed to get show-source flag: %w", err)
	}
	if o.showFixes, err = flags.GetBool("show-fixes"); err != nil {
		return o, fmt.Errorf("failed to get show-fixes flag: %w", err)
	}
	if o.exitZero, err = flags.GetBool("exit-zero"); err != nil {
		return o, fmt.Errorf("failed to get exit-zero flag: %w", err)
	}
	if o.watch, err = flags.GetBool("watch"); err != nil {
		return o, fmt.Errorf("failed to get watch flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return o, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if o.ui, err = readUIMode(uiStr); err != nil {
		return o, err
	}
	if o.statistics && o.format == report.FormatJSON {
		return o, errors.New("--statistics cannot be combined with --output-format json")
	}

	// Глобальные флаги
	root := cmd.Root().PersistentFlags()
	if o.color, err = root.GetString("color"); err != nil {
		return o, fmt.Errorf("failed to get color flag: %w", err)
	}
	if o.quiet, err = root.GetBool("quiet"); err != nil {
		return o, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if o.timings, err = root.GetBool("timings"); err != nil {
		return o, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return o, nil
}

func parsePathMode(s string) (report.PathMode, error) {
	switch s {
	case "", "auto":
		return report.PathModeAuto, nil
	case "absolute":
		return report.PathModeAbsolute, nil
	case "basename":
		return report.PathModeBasename, nil
	}
	return report.PathModeAuto, fmt.Errorf("unknown path mode %q (want auto, absolute or basename)", s)
}

// loadSettings reads --config or discovers a configuration next to the
// first path, then applies the command-line overrides.
func loadSettings(o checkOptions, paths []string) (*settings.Settings, error) {
	var (
		s   *settings.Settings
		err error
	)
	if o.config != "" {
		s, err = settings.Load(o.config)
	} else {
		s, err = settings.Discover(paths[0])
	}
	if err != nil {
		return nil, err
	}
	if err := s.Apply(o.overrides); err != nil {
		return nil, err
	}
	return s, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	o, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	s, err := loadSettings(o, paths)
	if err != nil {
		return err
	}

	color, err := report.ColorEnabled(o.color, os.Stdout)
	if err != nil {
		return err
	}
	base, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	ropts := report.Options{
		Color:     color,
		PathMode:  o.pathMode,
		Base:      base,
		Context:   o.showSource,
		Width:     report.TerminalWidth(os.Stdout),
		ShowFixes: o.showFixes,
	}

	lopts := linter.Options{Settings: s, Jobs: o.jobs}
	if !o.noCache {
		cache, err := linter.OpenCache(s.CacheDir)
		if err != nil {
			// кэш необязателен
			if !o.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
			}
		} else {
			lopts.Cache = cache
		}
	}
	if o.timings {
		lopts.Timer = observ.NewTimer()
	}

	out := cmd.OutOrStdout()
	if o.watch {
		return watch(cmd, paths, lopts, o, ropts)
	}

	var res *linter.Result
	if !o.quiet && shouldUseTUI(o.ui) {
		res, err = runWithUI(cmd.Context(), paths, lopts)
	} else {
		res, err = linter.Run(cmd.Context(), paths, lopts)
	}
	if err != nil {
		return err
	}
	if err := render(out, res, o, ropts); err != nil {
		return err
	}
	if o.timings {
		fmt.Fprint(cmd.ErrOrStderr(), lopts.Timer.Summary())
	}
	return checkStatus(res, o.exitZero)
}

func render(w io.Writer, res *linter.Result, o checkOptions, ropts report.Options) error {
	switch {
	case o.statistics:
		return report.Statistics(w, res, ropts)
	case o.format == report.FormatJSON:
		return report.JSON(w, res, ropts)
	default:
		return report.Text(w, res, ropts)
	}
}

// checkStatus maps a finished run to the command error: unreadable files
// take precedence over reported diagnostics.
func checkStatus(res *linter.Result, exitZero bool) error {
	unreadable := 0
	for i := range res.Files {
		if res.Files[i].Err != nil {
			unreadable++
		}
	}
	if unreadable > 0 {
		return fmt.Errorf("%d file(s) could not be read", unreadable)
	}
	if res.Diagnostics() > 0 && !exitZero {
		return errViolations
	}
	return nil
}

func watch(cmd *cobra.Command, paths []string, lopts linter.Options, o checkOptions, ropts report.Options) error {
	w, err := linter.NewWatcher(paths, lopts)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	out := cmd.OutOrStdout()
	clearScreen := isTerminal(os.Stdout) && o.format == report.FormatText
	return w.Run(cmd.Context(), func(res *linter.Result) {
		if clearScreen {
			fmt.Fprint(out, "\x1b[H\x1b[2J")
		}
		if err := render(out, res, o, ropts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "krait: %v\n", err)
		}
		if o.timings {
			fmt.Fprint(cmd.ErrOrStderr(), lopts.Timer.Summary())
		}
		if !o.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes...")
		}
	})
}
