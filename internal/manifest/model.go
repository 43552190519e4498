package manifest

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EnvFileKey is the env entry that names a dotenv file to load before the
// inline variables are applied.
const EnvFileKey = "$file"

// Manifest is the subset of a package.json that describes launch targets.
type Manifest struct {
	Name       string   `json:"name" yaml:"name"`
	Workspaces Globs    `json:"workspaces,omitempty" yaml:"workspaces,omitempty"`
	Packages   Globs    `json:"packages,omitempty" yaml:"packages,omitempty"`
	Launch     []Target `json:"launch" yaml:"launch"`
}

// Target is one launch configuration, selected by Name or Package.
type Target struct {
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Package string            `json:"package,omitempty" yaml:"package,omitempty"`
	Script  string            `json:"script" yaml:"script"`
	Inspect string            `json:"inspect,omitempty" yaml:"inspect,omitempty"`
	Watch   []string          `json:"watch,omitempty" yaml:"watch,omitempty"`
	Ignore  []string          `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Cwd     string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	Exec    string            `json:"exec,omitempty" yaml:"exec,omitempty"`
	Args    any               `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// ID returns the identifier a target is addressed by: its name, or its
// package when it has no name.
func (t Target) ID() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Package
}

// EnvFile returns the env file reference, if one is declared.
func (t Target) EnvFile() (string, bool) {
	f, ok := t.Env[EnvFileKey]
	return f, ok && f != ""
}

// Globs is a list of workspace package patterns. It decodes from either a
// plain list or the yarn object form {"packages": [...]}.
type Globs []string

// UnmarshalJSON implements json.Unmarshaler.
func (g *Globs) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*g = list
		return nil
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected a list of globs or an object with packages: %w", err)
	}
	*g = obj.Packages
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Globs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*g = list
		return nil
	case yaml.MappingNode:
		var obj struct {
			Packages []string `yaml:"packages"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		*g = obj.Packages
		return nil
	default:
		return fmt.Errorf("line %d: expected a list of globs or a mapping with packages", node.Line)
	}
}
