package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/launchpad/internal/config"
	"github.com/harshul/launchpad/internal/manifest"
	"github.com/harshul/launchpad/internal/ui"
)

// newInitCmd writes a .launchpad.yaml with the default settings.
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .launchpad.yaml with the default settings",
		Long: `The init command writes a launcher configuration file holding the
defaults launchpad uses: the manifest path, the runtime, the restart delay
and whether the dashboard is shown. Edit it to change them per repository.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(cwd, outputPath)
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		if !isTerminal() {
			return fmt.Errorf("configuration file already exists at %s. Use --force to overwrite", outputPath)
		}
		overwrite, err := ui.RunYesNoPrompt("Overwrite "+filepath.Base(outputPath)+"?", outputPath, false)
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			ui.Info("Kept the existing configuration")
			return nil
		}
	}

	cfg := config.Default()
	if flagChanged(cmd, "manifest") {
		cfg.Manifest, _ = cmd.Flags().GetString("manifest")
	}

	// Only warn: the manifest may be created after the config.
	mpath := cfg.Manifest
	if !filepath.IsAbs(mpath) {
		mpath = filepath.Join(cwd, mpath)
	}
	if m, err := manifest.Load(mpath); err != nil {
		ui.Warn(fmt.Sprintf("%s: %v", cfg.Manifest, err))
	} else if len(m.Launch) == 0 {
		ui.Warn(fmt.Sprintf("%s has no launch targets yet", cfg.Manifest))
	}

	if err := config.Write(outputPath, cfg); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	ui.Success(fmt.Sprintf("Configuration written to %s", outputPath))
	ui.Info("Run 'launchpad list' to see the launch targets")
	return nil
}
