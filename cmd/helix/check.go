package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"helix/internal/driver"
)

var (
	checkNoCache  bool
	checkCacheDir string
)

func init() {
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "recompute every snapshot")
	checkCmd.Flags().StringVar(&checkCacheDir, "cache-dir", "", "override the snapshot cache location")
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] dir",
	Short: "Check every signature fixture under a directory",
	Long:  `Check materializes each fixture, verifies the environment invariants and caches the computed substitution maps`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	var cache *driver.SnapshotCache
	if !checkNoCache {
		var err error
		if checkCacheDir != "" {
			cache, err = driver.OpenSnapshotCacheAt(checkCacheDir)
		} else {
			cache, err = driver.OpenSnapshotCache("helix")
		}
		if err != nil {
			return fmt.Errorf("opening snapshot cache: %w", err)
		}
	}

	results, err := driver.CheckDir(cmd.Context(), args[0], cache)
	if err != nil {
		return err
	}

	colored := useColor(cmd, os.Stdout)
	okMark := color.New(color.FgGreen).SprintFunc()
	failMark := color.New(color.FgRed, color.Bold).SprintFunc()
	if !colored {
		okMark = fmt.Sprint
		failMark = fmt.Sprint
	}

	failures := 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failures++
			fmt.Fprintf(os.Stdout, "%s %s\n    %v\n", failMark("FAIL"), res.Path, res.Err)
		case res.Cached:
			fmt.Fprintf(os.Stdout, "%s %s (cached)\n", okMark("ok"), res.Path)
		default:
			fmt.Fprintf(os.Stdout, "%s %s\n", okMark("ok"), res.Path)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failures, len(results))
	}
	fmt.Fprintf(os.Stdout, "%d fixtures ok\n", len(results))
	return nil
}
