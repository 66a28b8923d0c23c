package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "roastlog",
	Short: "Coffee roast logging backend",
	Long: `roastlog records roast sessions as a log of timed events (control
changes and milestones) and derives duration, milestone offsets, rate of
rise and weight loss from them.

  serve    Run the HTTP API (default)
  report   Print the summary of a stored roast`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.yml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
}
