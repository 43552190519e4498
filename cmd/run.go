package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/launchpad/internal/config"
	"github.com/harshul/launchpad/internal/orchestrator"
	"github.com/harshul/launchpad/internal/ui"
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dashboard", "d", false, "Show the TUI dashboard instead of plain output")
	cmd.Flags().Duration("delay", 0, "Debounce delay before restarting on file changes (default from config, 500ms)")
	cmd.Flags().BoolP("pick", "p", false, "Choose the target from a list")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	opts, err := loadOptions(cmd, id)
	if err != nil {
		return err
	}
	if opts.Dashboard && !isTerminal() {
		ui.Warn("stdin is not a terminal, running without the dashboard")
		opts.Dashboard = false
	}

	orch, err := orchestrator.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	if pick, _ := cmd.Flags().GetBool("pick"); pick && id == "" {
		picked, err := pickTarget(orch)
		if err != nil {
			return err
		}
		if picked == "" {
			ui.Info("No target selected")
			return nil
		}
		opts.TargetID = picked
		if orch, err = orchestrator.New(opts); err != nil {
			return fmt.Errorf("failed to create orchestrator: %w", err)
		}
	}

	return orch.Run(cmd.Context())
}

// pickTarget lets the user choose among the manifest's targets. It returns
// "" when the prompt is cancelled.
func pickTarget(orch *orchestrator.Orchestrator) (string, error) {
	m, err := orch.LoadManifest()
	if err != nil {
		return "", err
	}
	if !isTerminal() {
		return "", fmt.Errorf("--pick needs an interactive terminal")
	}

	options := make([]ui.SelectOption, 0, len(m.Launch))
	for _, t := range m.Launch {
		if t.ID() == "" {
			continue
		}
		desc := t.Script
		if t.Package != "" && t.Name != "" {
			desc = t.Package + ": " + desc
		}
		options = append(options, ui.SelectOption{Label: t.ID(), Value: t.ID(), Description: desc})
	}
	if len(options) == 0 {
		return "", fmt.Errorf("%s has no launch targets", orch.ManifestPath())
	}

	picked, err := ui.RunSelectPrompt("Which target do you want to launch?", orch.ManifestPath(), options)
	if err != nil {
		return "", fmt.Errorf("target prompt failed: %w", err)
	}
	return picked.Value, nil
}

// loadOptions merges the config file with the command-line flags. Flags
// that were set explicitly win over the file.
func loadOptions(cmd *cobra.Command, id string) (orchestrator.Options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return orchestrator.Options{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return orchestrator.Options{}, err
	}

	if flagChanged(cmd, "manifest") {
		cfg.Manifest, _ = cmd.Flags().GetString("manifest")
	}
	if flagChanged(cmd, "runtime") {
		cfg.Runtime, _ = cmd.Flags().GetString("runtime")
	}
	if flagChanged(cmd, "delay") {
		cfg.Delay, _ = cmd.Flags().GetDuration("delay")
		if cfg.Delay < 0 {
			return orchestrator.Options{}, fmt.Errorf("--delay must not be negative")
		}
	}
	if flagChanged(cmd, "dashboard") {
		cfg.Dashboard, _ = cmd.Flags().GetBool("dashboard")
	}
	return orchestrator.Options{
		WorkDir:      cwd,
		ManifestPath: cfg.Manifest,
		TargetID:     id,
		Runtime:      cfg.Runtime,
		Delay:        cfg.Delay,
		Ignore:       cfg.Ignore,
		Dashboard:    cfg.Dashboard,
	}, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
