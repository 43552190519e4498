package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshul/launchpad/internal/manifest"
)

// writeDescriptor writes a package.json with the given raw content under root/dir.
func writeDescriptor(t *testing.T, root, dir, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(dir))
	require.NoError(t, os.MkdirAll(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, DescriptorFile), []byte(content), 0644))
}

func named(name string) string {
	return `{"name": "` + name + `", "version": "1.0.0"}`
}

func TestLocate_findsPackage(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "packages/foo", named("foo"))
	writeDescriptor(t, root, "packages/bar", named("bar"))

	got, err := Locate(context.Background(), []string{"packages/*"}, "foo", root)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "packages/foo/"), "got %q", got)
	assert.True(t, strings.HasPrefix(got, root), "got %q", got)
}

func TestLocate_nestedDescriptor(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "apps/web/client", named("@acme/client"))

	got, err := Locate(context.Background(), []string{"apps"}, "@acme/client", root)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "apps/web/client/"), "got %q", got)
}

// slowGlob delays the expansion of any base directory ending in suffix.
func slowGlob(t *testing.T, suffix string, delay time.Duration) {
	t.Helper()
	orig := glob
	t.Cleanup(func() { glob = orig })
	glob = func(dir, pattern string) ([]string, error) {
		if strings.HasSuffix(filepath.ToSlash(dir), suffix) {
			time.Sleep(delay)
		}
		return orig(dir, pattern)
	}
}

func TestLocate_declarationOrderWins(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "b/dup", named("dup"))
	writeDescriptor(t, root, "e/dup", named("dup"))
	for _, d := range []string{"a/one", "c/two", "d/three"} {
		writeDescriptor(t, root, d, named(filepath.Base(d)))
	}
	// The earlier hit finishes last.
	slowGlob(t, "/b", 100*time.Millisecond)

	got, err := Locate(context.Background(), []string{"a/*", "b/*", "c/*", "d/*", "e/*"}, "dup", root)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "b/dup/"), "got %q", got)
}

func TestLocate_workspacesBeforePackages(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "shared/ui", named("ui"))
	writeDescriptor(t, root, "libs/ui", named("ui"))
	m := &manifest.Manifest{
		Workspaces: manifest.Globs{"apps/*", "shared/*"},
		Packages:   manifest.Globs{"tools/*", "plugins/*", "libs/*"},
	}
	slowGlob(t, "/shared", 100*time.Millisecond)

	got, err := Locate(context.Background(), m.PackageGlobs(), "ui", root)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "shared/ui/"), "got %q", got)
}

func TestLocate_parentRelativeGlob(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "repo")
	writeDescriptor(t, base, "shared/lib", named("lib"))
	writeDescriptor(t, root, "packages/app", named("app"))

	got, err := Locate(context.Background(), []string{"packages/*", "../shared/*"}, "lib", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "shared", "lib")+string(filepath.Separator), got)
}

func TestLocate_absoluteGlob(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeDescriptor(t, other, "vendor/lib", named("lib"))

	got, err := Locate(context.Background(), []string{filepath.Join(other, "vendor", "*")}, "lib", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(other, "vendor", "lib")+string(filepath.Separator), got)
}

func TestLocate_malformedDescriptorIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "packages/a-broken", `{"name": "svc",`)
	writeDescriptor(t, root, "packages/b-good", named("svc"))

	got, err := Locate(context.Background(), []string{"packages/*"}, "svc", root)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "packages/b-good/"), "got %q", got)
}

func TestLocate_skipsNodeModules(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "packages/app/node_modules/lib", named("lib"))

	_, err := Locate(context.Background(), []string{"packages/*"}, "lib", root)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestLocate_notFound(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "packages/foo", named("foo"))

	_, err := Locate(context.Background(), []string{"packages/*", "missing/*"}, "nope", root)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestLocate_noGlobs(t *testing.T) {
	_, err := Locate(context.Background(), nil, "foo", t.TempDir())
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestLocate_badPattern(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "packages/foo", named("foo"))

	_, err := Locate(context.Background(), []string{"packages/*", "packages/["}, "foo", root)
	assert.ErrorIs(t, err, ErrDiscovery)
}

func TestDescriptorPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"packages/*", "packages/*/**/package.json"},
		{"./packages/*", "packages/*/**/package.json"},
		{"apps/", "apps/**/package.json"},
		{".", "**/package.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, descriptorPattern(tt.in), "descriptorPattern(%q)", tt.in)
	}
}
