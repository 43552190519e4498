package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harshul/launchpad/internal/orchestrator"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the launch targets in the manifest",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd, "")
	if err != nil {
		return err
	}
	orch, err := orchestrator.New(opts)
	if err != nil {
		return err
	}
	m, err := orch.LoadManifest()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(m.Launch) == 0 {
		fmt.Fprintln(out, "no launch targets")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPACKAGE\tSCRIPT\tEXEC")
	for _, t := range m.Launch {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", orDash(t.ID()), orDash(t.Package), orDash(t.Script), orDash(t.Exec))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
