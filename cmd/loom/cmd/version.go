package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the loom version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return json.NewEncoder(out).Encode(map[string]string{
					"version":   Version,
					"buildTime": BuildTime,
					"app":       opts.Config.AppName,
				})
			}
			_, err := fmt.Fprintf(out, "loom version %s (built %s)\n", Version, BuildTime)
			return err
		},
	}
}
