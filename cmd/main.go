package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harshul/launchpad/internal/config"
	"github.com/harshul/launchpad/internal/ui"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// isTerminal gates every interactive prompt; tests replace it.
var isTerminal = ui.IsTerminal

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launchpad [id]",
		Short: "Launch and supervise a target from the package manifest",
		Long: `Launchpad reads the "launch" list of a package.json, resolves the
target named on the command line (or the first one), and runs it under a
file-watching supervisor.

While it runs:
  ctrl+r  restart the process
  ctrl+c  stop the process group and exit`,
		Version:           version,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runLaunch,
	}

	cmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "Path to the launcher configuration file")
	cmd.PersistentFlags().StringP("manifest", "m", "", "Path to the manifest (default from config, package.json)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("runtime", "", "Runtime executable used when a target has no exec (default from config, node)")

	addRunFlags(cmd)

	cmd.AddCommand(
		newListCmd(),
		newInspectCmd(),
		newInitCmd(),
		newDoctorCmd(),
	)
	return cmd
}

// setup configures logging and colors before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if noColor || !ui.ShouldUseColor() {
		ui.DisableColor()
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.SetOutput(os.Stderr)
		ui.Error(fmt.Sprint(err))
		os.Exit(1)
	}
}
