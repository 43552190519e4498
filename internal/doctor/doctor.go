// Package doctor checks that a resolved launch target can actually start:
// the runtime is installed, dependencies are present, the env file exists
// and the debugger port is free.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/harshul/launchpad/internal/launch"
	"github.com/harshul/launchpad/internal/manifest"
	"github.com/harshul/launchpad/internal/placeholder"
	"github.com/harshul/launchpad/internal/ports"
	"github.com/harshul/launchpad/internal/provisioner"
)

// RuntimeStatus represents the status of a runtime check
type RuntimeStatus struct {
	Name      string
	Installed bool
	Version   string
	Path      string
}

// DependencyStatus represents the status of workspace dependencies
type DependencyStatus struct {
	Manager          string
	LockFile         string
	Installed        bool   // node_modules found in the package dir or the root
	InstallCommand   string
	ManagerInstalled bool
	ManagerHint      string
}

// Diagnosis contains the full health check results
type Diagnosis struct {
	Target       string
	Runtime      RuntimeStatus
	Dependencies DependencyStatus
	EnvFile      string // resolved env file path, empty if none is declared
	EnvFileFound bool
	Inspect      *ports.Conflict
	Healthy      bool
	Issues       []string
}

func (d *Diagnosis) fail(format string, args ...any) {
	d.Healthy = false
	d.Issues = append(d.Issues, fmt.Sprintf(format, args...))
}

// Diagnose checks the health of a resolved target.
func Diagnose(target manifest.Target, paths placeholder.Paths, spec launch.Spec) Diagnosis {
	d := Diagnosis{
		Target:  target.ID(),
		Healthy: true,
		Issues:  []string{},
	}

	d.Runtime = CheckRuntime(spec.Runtime())
	if !d.Runtime.Installed {
		d.fail("%s is not installed or not on PATH", d.Runtime.Name)
	}

	d.Dependencies = checkDependencies(paths)
	if !d.Dependencies.ManagerInstalled {
		d.fail("%s is required but not installed. %s", d.Dependencies.Manager, d.Dependencies.ManagerHint)
	}
	if !d.Dependencies.Installed {
		d.fail("dependencies are not installed, run '%s'", d.Dependencies.InstallCommand)
	}

	if file, ok := target.EnvFile(); ok {
		d.EnvFile = placeholder.Substitute(file, paths)
		if _, err := os.Stat(d.EnvFile); err == nil {
			d.EnvFileFound = true
		} else {
			d.fail("env file %s does not exist; its variables will be missing", d.EnvFile)
		}
	}

	for _, w := range spec.Watch {
		if strings.ContainsAny(w, "*?[{") {
			continue
		}
		if _, err := os.Stat(w); err != nil {
			d.fail("watch path %s does not exist", w)
		}
	}

	if target.Inspect != "" && target.Exec == "" {
		conflict, err := ports.CheckInspect(target.Inspect)
		switch {
		case err != nil:
			d.fail("%v", err)
		case conflict != nil:
			d.Inspect = conflict
			d.fail("debugger port %d is already in use", conflict.Port)
		}
	}

	return d
}

// CheckRuntime checks if the runtime executable is installed
func CheckRuntime(name string) RuntimeStatus {
	status := RuntimeStatus{Name: name}
	if name == "" {
		return status
	}
	if path, err := exec.LookPath(name); err == nil {
		status.Path = path
	}
	status.Installed, status.Version = provisioner.CommandVersion(name)
	return status
}

// checkDependencies checks if node dependencies are installed for the target
func checkDependencies(paths placeholder.Paths) DependencyStatus {
	pm := provisioner.DetectPackageManager(paths.Root)
	status := DependencyStatus{
		Manager:          string(pm.Manager),
		LockFile:         pm.LockFile,
		InstallCommand:   strings.Join(pm.InstallCommand, " "),
		ManagerInstalled: pm.Installed,
	}
	if !pm.Installed {
		status.ManagerHint = provisioner.InstallHint(pm.Manager)
	}

	// Workspaces hoist dependencies to the root, so either location counts.
	dirs := []string{paths.Root}
	if paths.Package != "" {
		dirs = append([]string{paths.Package}, dirs...)
	}
	for _, dir := range dirs {
		if info, err := os.Stat(filepath.Join(dir, "node_modules")); err == nil && info.IsDir() {
			status.Installed = true
			break
		}
	}
	return status
}
