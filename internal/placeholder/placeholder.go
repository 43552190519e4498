// Package placeholder rewrites the ${cwd}, ${root} and ${package} tokens used
// in launch targets into concrete paths.
package placeholder

import (
	"regexp"
	"strings"
)

// Paths holds the values the placeholder tokens resolve to.
// Root is fixed for a run; Cwd and Package are filled in by the resolution
// pipeline, which passes updated copies along instead of sharing one value.
type Paths struct {
	Root    string
	Cwd     string
	Package string
}

// NewPaths returns Paths rooted at dir with the working directory set to dir.
func NewPaths(dir string) Paths {
	return Paths{Root: dir, Cwd: dir}
}

var (
	cwdToken     = regexp.MustCompile(`(?i)\$\{cwd\}`)
	rootToken    = regexp.MustCompile(`(?i)\$\{root\}`)
	packageToken = regexp.MustCompile(`(?i)\$\{package\}`)
)

// Substitute replaces the first occurrence of each token kind, in the order
// cwd, root, package, then collapses the first doubled forward slash and the
// first doubled backslash. Later occurrences are left as literal text.
func Substitute(input string, p Paths) string {
	out := replaceFirst(cwdToken, input, p.Cwd)
	out = replaceFirst(rootToken, out, p.Root)
	out = replaceFirst(packageToken, out, p.Package)
	out = strings.Replace(out, "//", "/", 1)
	out = strings.Replace(out, `\\`, `\`, 1)
	return out
}

// SubstituteAll applies Substitute to every element of in.
// A nil or empty input yields an empty, non-nil slice.
func SubstituteAll(in []string, p Paths) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, Substitute(s, p))
	}
	return out
}

func replaceFirst(re *regexp.Regexp, s, value string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + value + s[loc[1]:]
}
