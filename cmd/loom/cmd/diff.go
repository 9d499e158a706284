package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type diffResult struct {
	App    string   `json:"app"`
	Ops    []string `json:"ops"`
	Markup []string `json:"markup"`
	Pass   passJSON `json:"pass"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before.yaml> <after.yaml>",
		Short: "Print the host operations that turn one tree into another",
		Long: `Diff renders the first tree file, then reconciles the second
against it and prints only the host operations the second pass issued.
Elements keep their identity across the two files by key, or by type
and position when they have none.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts, args[0], args[1])
		},
	}
}

func runDiff(cmd *cobra.Command, opts *RootOptions, before, after string) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	if _, err := s.render(before); err != nil {
		return err
	}
	s.doc.ResetOps()
	stats, err := s.render(after)
	if err != nil {
		return err
	}

	res := diffResult{
		App:    opts.Config.AppName,
		Ops:    s.ops(),
		Markup: s.markup(),
		Pass:   toPassJSON(stats),
	}
	if res.Ops == nil {
		res.Ops = []string{}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := json.NewEncoder(out).Encode(res); err != nil {
			return err
		}
		return s.writeMetrics(cmd.ErrOrStderr())
	}
	if len(res.Ops) == 0 {
		fmt.Fprintln(out, "no changes")
	}
	for _, op := range res.Ops {
		fmt.Fprintln(out, op)
	}
	fmt.Fprintln(out, res.Pass)
	return s.writeMetrics(out)
}
