package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"helix/internal/version"
)

var versionShowFull bool

func init() {
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show helix build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(os.Stdout, "helix %s\n", version.Version)
		if versionShowFull {
			if version.GitCommit != "" {
				fmt.Fprintf(os.Stdout, "commit: %s\n", version.GitCommit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(os.Stdout, "built:  %s\n", version.BuildDate)
			}
		}
		return nil
	},
}
