package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harshul/launchpad/internal/launch"
	"github.com/harshul/launchpad/internal/orchestrator"
	"github.com/harshul/launchpad/internal/secrets"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [id]",
		Short: "Print the resolved launch spec without starting anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}
	cmd.Flags().Bool("show-secrets", false, "Print env values unmasked")
	return cmd
}

type inspectView struct {
	ID      string      `yaml:"id"`
	Root    string      `yaml:"root"`
	Package string      `yaml:"package,omitempty"`
	Command []string    `yaml:"command"`
	Spec    launch.Spec `yaml:"spec"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	showSecrets, _ := cmd.Flags().GetBool("show-secrets")

	opts, err := loadOptions(cmd, id)
	if err != nil {
		return err
	}
	orch, err := orchestrator.New(opts)
	if err != nil {
		return err
	}
	res, err := orch.Resolve(cmd.Context())
	if err != nil {
		return err
	}

	spec := res.Spec
	if !showSecrets {
		spec.Env = secrets.MaskEnv(spec.Env)
	}
	view := inspectView{
		ID:      res.ID,
		Root:    res.Paths.Root,
		Package: res.Paths.Package,
		Command: spec.Argv(),
		Spec:    spec,
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return err
	}
	return enc.Close()
}
