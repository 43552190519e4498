// Package workspace finds the directory of a named package among the
// workspace globs declared by a manifest.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// DescriptorFile is the per-package file whose name field identifies a package.
const DescriptorFile = "package.json"

var (
	// ErrPackageNotFound reports that no glob yields a package with the requested name.
	ErrPackageNotFound = errors.New("package not found")

	// ErrDiscovery reports that a glob could not be expanded.
	ErrDiscovery = errors.New("package discovery failed")
)

// glob expands pattern below dir. Tests replace it to control timing.
var glob = func(dir, pattern string) ([]string, error) {
	return doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFailOnIOErrors(), doublestar.WithFilesOnly())
}

// Locate searches every glob concurrently for a package descriptor whose
// name equals name and returns the directory of the hit, with a trailing
// separator. Globs are relative to searchRoot unless absolute and may climb
// out of it with "..".
//
// All searches run to completion; when several globs hit, the one declared
// first wins regardless of which search finished first.
func Locate(ctx context.Context, globs []string, name, searchRoot string) (string, error) {
	hits := make([]string, len(globs))

	g, ctx := errgroup.WithContext(ctx)
	for i, glb := range globs {
		i, glb := i, glb
		g.Go(func() error {
			hit, err := search(ctx, searchRoot, glb, name)
			if err != nil {
				return err
			}
			hits[i] = hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	for i, hit := range hits {
		if hit == "" {
			continue
		}
		slog.Debug("located workspace package", "package", name, "glob", globs[i], "dir", hit)
		return hit + string(filepath.Separator), nil
	}
	return "", fmt.Errorf("%w: unable to find %s for package %q", ErrPackageNotFound, DescriptorFile, name)
}

// search expands one glob and returns the absolute directory of the first
// descriptor named name, or "" when there is none.
func search(ctx context.Context, searchRoot, glb, name string) (string, error) {
	base, pattern := doublestar.SplitPattern(descriptorPattern(glb))
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("%w: expanding %q: %v", ErrDiscovery, glb, doublestar.ErrBadPattern)
	}
	dir := filepath.FromSlash(base)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(searchRoot, dir)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	matches, err := glob(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("%w: expanding %q: %v", ErrDiscovery, glb, err)
	}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if inNodeModules(m) {
			continue
		}
		file := filepath.Join(dir, filepath.FromSlash(m))
		if descriptorName(file) == name {
			return filepath.Dir(file), nil
		}
	}
	return "", nil
}

// descriptorPattern turns a workspace glob into a pattern for the
// descriptors below it.
func descriptorPattern(glb string) string {
	glb = path.Clean(filepath.ToSlash(glb))
	glb = strings.TrimPrefix(glb, "./")
	if glb == "." || glb == "" {
		return "**/" + DescriptorFile
	}
	return glb + "/**/" + DescriptorFile
}

// descriptorName reads the name field of a package descriptor. Unreadable
// or malformed descriptors yield "".
func descriptorName(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		slog.Debug("skipping unreadable descriptor", "file", file, "error", err)
		return ""
	}
	if !gjson.ValidBytes(data) {
		slog.Debug("skipping malformed descriptor", "file", file)
		return ""
	}
	res := gjson.GetBytes(data, "name")
	if res.Type != gjson.String {
		return ""
	}
	return res.String()
}

func inNodeModules(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "node_modules" {
			return true
		}
	}
	return false
}
