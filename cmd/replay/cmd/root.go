package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "replay",
	Short:         "Reconstruct a past storm's constraint timeline",
	Long:          "Replay feeds an ordered list of advisory observations for a single storm\nthrough the constraint engine, reconstructing its full timeline offline.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
