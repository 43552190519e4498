// Package launch turns a resolved launch target into a concrete Spec the
// supervisor can run.
package launch

import "strings"

// DefaultRuntime is the executable used when a target does not set exec.
const DefaultRuntime = "node"

// Spec is a fully substituted launch specification.
type Spec struct {
	Cwd    string            `yaml:"cwd"`
	Script string            `yaml:"script"`
	Watch  []string          `yaml:"watch"`
	Ignore []string          `yaml:"ignore"`
	Env    map[string]string `yaml:"env"`
	Args   []string          `yaml:"args"`

	// Exec is the runtime invocation as a single display string,
	// e.g. "node --inspect=9229".
	Exec string `yaml:"exec"`

	// Command is Exec split into argv.
	Command []string `yaml:"-"`
}

// Argv returns the full argument vector: runtime, script, script arguments.
func (s Spec) Argv() []string {
	argv := make([]string, 0, len(s.Command)+1+len(s.Args))
	argv = append(argv, s.Command...)
	if s.Script != "" {
		argv = append(argv, s.Script)
	}
	argv = append(argv, s.Args...)
	return argv
}

// String renders the argv the way a shell user would type it.
func (s Spec) String() string {
	return strings.Join(s.Argv(), " ")
}

// Runtime returns the executable name the spec starts.
func (s Spec) Runtime() string {
	if len(s.Command) == 0 {
		return ""
	}
	return s.Command[0]
}
