package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "sill",
		Short:         "Exact inference over discrete factor models",
		Long:          "sill builds junction trees from YAML factor models and calibrates them with the Shafer-Shenoy or Hugin engine.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level message-pass tracing")

	cmd.AddCommand(newCalibrateCmd(&verbose))

	return cmd
}
