package supervisor

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnore is always ignored, on top of the target's own patterns.
var DefaultIgnore = []string{".git", "node_modules"}

// ignoreMatcher decides whether a changed path should be skipped.
//
// A pattern matches the absolute path, the path relative to the working
// directory, or anything below a matched directory. A pattern without a
// separator also matches any single path segment, so "dist" ignores every
// dist directory.
type ignoreMatcher struct {
	cwd      string
	patterns []string
}

func newIgnoreMatcher(cwd string, patterns []string) *ignoreMatcher {
	m := &ignoreMatcher{cwd: cwd}
	for _, p := range append(append([]string{}, DefaultIgnore...), patterns...) {
		p = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(p)), "/")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether path is ignored.
func (m *ignoreMatcher) Match(path string) bool {
	abs := filepath.ToSlash(path)
	rel := ""
	if r, err := filepath.Rel(m.cwd, path); err == nil && !strings.HasPrefix(r, "..") {
		rel = filepath.ToSlash(r)
	}
	segments := strings.Split(abs, "/")

	for _, p := range m.patterns {
		if matchTree(p, abs) || (rel != "" && matchTree(p, rel)) {
			return true
		}
		if !strings.Contains(p, "/") {
			for _, seg := range segments {
				if ok, _ := doublestar.Match(p, seg); ok && seg != "" {
					return true
				}
			}
		}
	}
	return false
}

// matchTree matches name against pattern or anything below it.
func matchTree(pattern, name string) bool {
	if ok, _ := doublestar.Match(pattern, name); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern+"/**", name)
	return ok
}
