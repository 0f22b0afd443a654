package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the Cobra-based CLI entry point.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modemtrack",
		Short: "Extract the connected-device list from a gateway admin interface",
		Long:  "modemtrack logs into a Nokia G-240G style gateway, reads its connected-device list and produces a console summary plus a JSON report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "path to a YAML config file (defaults apply when absent)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReplayCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the modemtrack version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "modemtrack 0.1.0")
		},
	}
}
