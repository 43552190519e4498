package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshul/launchpad/internal/doctor"
	"github.com/harshul/launchpad/internal/orchestrator"
	"github.com/harshul/launchpad/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [id]",
		Short: "Check that a launch target can start",
		Long: `The doctor command resolves a target and checks that:
- the runtime executable is installed
- workspace dependencies are installed
- the env file it references exists
- its watch paths exist
- its debugger port is free`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}

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

	d := doctor.Diagnose(res.Target, res.Paths, res.Spec)

	var b strings.Builder
	runtime := d.Runtime.Name
	if d.Runtime.Version != "" {
		runtime += " " + d.Runtime.Version
	}
	if !d.Runtime.Installed {
		runtime += " (missing)"
	}
	fmt.Fprintf(&b, "runtime       %s\n", runtime)
	fmt.Fprintf(&b, "manager       %s\n", d.Dependencies.Manager)
	fmt.Fprintf(&b, "dependencies  %s\n", yesNo(d.Dependencies.Installed, "installed", "missing"))
	if d.EnvFile != "" {
		fmt.Fprintf(&b, "env file      %s (%s)\n", d.EnvFile, yesNo(d.EnvFileFound, "found", "missing"))
	}
	fmt.Fprintf(&b, "command       %s", res.Spec.String())
	ui.Box("Doctor: "+d.Target, b.String())

	if d.Healthy {
		ui.Success("Everything looks good")
		return nil
	}
	for _, issue := range d.Issues {
		ui.Warn(issue)
	}
	if d.Inspect != nil && d.Inspect.Suggested > 0 {
		ui.Info(fmt.Sprintf("Try \"inspect\": %q", d.Inspect.Suggest(res.Target.Inspect)))
	}
	return fmt.Errorf("%d issue(s) found for %s", len(d.Issues), d.Target)
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
