package manifest

import "fmt"

// Resolve returns the launch target whose name or package equals id.
// Entries are scanned in declaration order and the last match wins.
func (m *Manifest) Resolve(id string) (Target, error) {
	var (
		selected Target
		found    bool
	)
	for _, t := range m.Launch {
		if id == t.Name || id == t.Package {
			selected = t
			found = true
		}
	}
	if !found {
		return Target{}, fmt.Errorf("%w: no launch entry with the id of %q", ErrTargetNotFound, id)
	}

	if selected.Package != "" && !m.HasPackageRoots() {
		return Target{}, fmt.Errorf("%w: target %q names package %q but the manifest has no workspaces or packages list",
			ErrManifestInvalid, id, selected.Package)
	}
	return selected, nil
}

// DefaultID returns the id of the first launch entry, or "" if there is none.
func (m *Manifest) DefaultID() string {
	for _, t := range m.Launch {
		if id := t.ID(); id != "" {
			return id
		}
	}
	return ""
}

// HasPackageRoots reports whether the manifest declares workspaces or packages.
func (m *Manifest) HasPackageRoots() bool {
	return m.Workspaces != nil || m.Packages != nil
}

// PackageGlobs returns the workspace globs followed by the packages globs.
func (m *Manifest) PackageGlobs() []string {
	globs := make([]string, 0, len(m.Workspaces)+len(m.Packages))
	globs = append(globs, m.Workspaces...)
	globs = append(globs, m.Packages...)
	return globs
}
