package provisioner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// PackageManager represents a detected package manager
type PackageManager string

const (
	NPM  PackageManager = "npm"
	PNPM PackageManager = "pnpm"
	Yarn PackageManager = "yarn"
	Bun  PackageManager = "bun"
)

// PackageManagerInfo contains details about the detected package manager
type PackageManagerInfo struct {
	Manager        PackageManager
	LockFile       string // empty when no lock file was found
	InstallCommand []string
	Installed      bool
	Version        string
}

// lockFiles in detection order.
var lockFiles = []struct {
	name    string
	manager PackageManager
}{
	{"pnpm-lock.yaml", PNPM},
	{"pnpm-workspace.yaml", PNPM},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"yarn.lock", Yarn},
	{"package-lock.json", NPM},
}

// DetectPackageManager checks for lock files in the workspace root and
// returns the package manager that owns them. npm is the fallback.
func DetectPackageManager(root string) PackageManagerInfo {
	info := PackageManagerInfo{Manager: NPM}
	for _, lf := range lockFiles {
		if _, err := os.Stat(filepath.Join(root, lf.name)); err == nil {
			info.Manager = lf.manager
			info.LockFile = lf.name
			break
		}
	}
	info.InstallCommand = []string{string(info.Manager), "install"}
	info.Installed, info.Version = CommandVersion(string(info.Manager))
	return info
}

// CommandVersion reports whether name is on PATH and what its --version
// prints.
func CommandVersion(name string) (bool, string) {
	if _, err := exec.LookPath(name); err != nil {
		return false, ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, name, "--version").Output()
	if err != nil {
		// Some runtimes do not support --version; it is still installed.
		return true, ""
	}
	return true, firstLine(string(output))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// InstallHint returns the installation hint for a package manager
func InstallHint(manager PackageManager) string {
	switch manager {
	case PNPM:
		return "Please run 'corepack enable pnpm' to continue."
	case Yarn:
		return "Please run 'corepack enable yarn' to continue."
	case Bun:
		return "Please install bun from https://bun.sh or run 'curl -fsSL https://bun.sh/install | bash'"
	case NPM:
		return "Please install Node.js from https://nodejs.org"
	default:
		return ""
	}
}
