package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_missingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	if cfg.Manifest != want.Manifest || cfg.Runtime != want.Runtime || cfg.Delay != want.Delay {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_overrides(t *testing.T) {
	path := writeConfig(t, `
manifest: launch.yaml
runtime: bun
delay: 2s
dashboard: true
ignore:
  - "**/*.test.js"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Manifest != "launch.yaml" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}
	if cfg.Runtime != "bun" {
		t.Errorf("Runtime = %q", cfg.Runtime)
	}
	if cfg.Delay != 2*time.Second {
		t.Errorf("Delay = %v, want 2s", cfg.Delay)
	}
	if !cfg.Dashboard {
		t.Error("Dashboard = false, want true")
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != "**/*.test.js" {
		t.Errorf("Ignore = %v", cfg.Ignore)
	}
}

func TestLoad_partialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "runtime: deno\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Manifest != "package.json" {
		t.Errorf("Manifest = %q, want default", cfg.Manifest)
	}
	if cfg.Delay != 500*time.Millisecond {
		t.Errorf("Delay = %v, want default", cfg.Delay)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "manifest: [",
		"bad delay":      "delay: soon\n",
		"negative delay": "delay: -1s\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	in := Config{Manifest: "package.json", Runtime: "bun", Delay: time.Second, Ignore: []string{"dist"}}
	if err := Write(path, in); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if out.Runtime != "bun" || out.Delay != time.Second || len(out.Ignore) != 1 {
		t.Errorf("round trip = %+v", out)
	}
}
