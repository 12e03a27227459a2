package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"krait/internal/linter"
	"krait/internal/settings"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove cached lint results",
	Long:  "Remove the result cache used by `krait check`. The cache directory comes from the configuration found for path, or --cache-dir.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/krait)")
}

func runClean(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if dir == "" {
		base := "."
		if len(args) > 0 && args[0] != "" {
			base = args[0]
		}
		s, err := settings.Discover(base)
		if err != nil {
			return err
		}
		dir = s.CacheDir
	}
	cache, err := linter.OpenCache(dir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear %q: %w", cache.Dir(), err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "removed cache under %s\n", cache.Dir())
	}
	return nil
}
