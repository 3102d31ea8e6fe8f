// Package cmd wires the tuner's cobra commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opossum-db/indextuner/utils"
)

// NewRootCmd builds the top-level "indextuner" command.
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "indextuner",
		Short: "index auto-tuning subsystem for a research column-store engine",
		Long:  `indextuner observes a query plan cache, proposes indexes, and applies a budget-constrained subset of them.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.SetLogLevel(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warning, error")
	root.AddCommand(NewTuneCmd())
	root.AddCommand(NewTuneOfflineCmd())
	return root
}
