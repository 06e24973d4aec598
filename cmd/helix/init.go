package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"helix/internal/fixture"
)

var initCmd = &cobra.Command{
	Use:   "init [flags] fixture.toml",
	Short: "Write a starter signature fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s already exists", args[0])
		}
		if err := fixture.WriteExample(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", args[0])
		return nil
	},
}
