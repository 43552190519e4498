package placeholder

import "testing"

func TestSubstitute(t *testing.T) {
	p := Paths{Root: "/repo", Cwd: "/repo/app", Package: "/repo/packages/foo/"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cwd", "${cwd}/index.js", "/repo/app/index.js"},
		{"root", "${root}/.env", "/repo/.env"},
		{"package", "${package}src/main.js", "/repo/packages/foo/src/main.js"},
		{"package with slash collapses", "${package}/src/main.js", "/repo/packages/foo/src/main.js"},
		{"case insensitive", "${CWD}/a ${Root}/b", "/repo/app/a /repo/b"},
		{"only first cwd replaced", "${cwd}/${cwd}", "/repo/app/${cwd}"},
		{"unknown token kept", "${home}/x", "${home}/x"},
		{"no tokens", "plain", "plain"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.input, p)
			if got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSubstitute_secondOccurrenceLiteral(t *testing.T) {
	p := Paths{Root: "r", Cwd: "c"}
	got := Substitute("${cwd}-${cwd}", p)
	if got != "c-${cwd}" {
		t.Errorf("got %q, want %q", got, "c-${cwd}")
	}
}

func TestSubstitute_normalizesFirstSeparatorOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a//b//c", "a/b//c"},
		{`a\\b\\c`, `a\b\\c`},
		{`x//y\\z`, `x/y\z`},
		{"a///b", "a//b"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Substitute(tt.input, Paths{})
			if got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSubstitute_emptyPackage(t *testing.T) {
	got := Substitute("${package}index.js", NewPaths("/root"))
	if got != "index.js" {
		t.Errorf("got %q, want %q", got, "index.js")
	}
}

func TestSubstituteAll(t *testing.T) {
	got := SubstituteAll(nil, NewPaths("/r"))
	if got == nil || len(got) != 0 {
		t.Fatalf("SubstituteAll(nil) = %#v, want empty slice", got)
	}

	got = SubstituteAll([]string{"${root}/src", "${cwd}/lib"}, NewPaths("/r"))
	if len(got) != 2 || got[0] != "/r/src" || got[1] != "/r/lib" {
		t.Errorf("SubstituteAll = %v", got)
	}
}
