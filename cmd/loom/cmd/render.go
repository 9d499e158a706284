package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type renderOptions struct {
	*RootOptions
	Ops  bool
	Tree bool
}

type renderResult struct {
	App    string   `json:"app"`
	Markup []string `json:"markup"`
	Ops    []string `json:"ops,omitempty"`
	Tree   string   `json:"tree,omitempty"`
	Pass   passJSON `json:"pass"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(root *RootOptions) *cobra.Command {
	opts := &renderOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "render <tree.yaml>",
		Short: "Render a tree file and print the resulting markup",
		Long: `Render decodes a YAML tree file, reconciles it into an empty
in-memory container and prints the container markup, followed by the
markup of every portal target the tree names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.Ops, "ops", false, "also print the host operation log")
	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "also print the fiber tree")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions, path string) error {
	s, err := newSession(opts.RootOptions)
	if err != nil {
		return err
	}
	stats, err := s.render(path)
	if err != nil {
		return err
	}

	res := renderResult{App: opts.Config.AppName, Markup: s.markup(), Pass: toPassJSON(stats)}
	if opts.Ops {
		res.Ops = s.ops()
	}
	if opts.Tree {
		var buf bytes.Buffer
		if err := s.root.Dump(&buf); err != nil {
			return err
		}
		res.Tree = buf.String()
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := json.NewEncoder(out).Encode(res); err != nil {
			return err
		}
		return s.writeMetrics(cmd.ErrOrStderr())
	}
	for _, m := range res.Markup {
		fmt.Fprintln(out, m)
	}
	if opts.Ops {
		fmt.Fprintln(out, "\nops:")
		for _, op := range res.Ops {
			fmt.Fprintln(out, "  "+op)
		}
	}
	if opts.Tree {
		fmt.Fprintln(out, "\ntree:")
		fmt.Fprint(out, res.Tree)
	}
	return s.writeMetrics(out)
}
