package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/harshul/launchpad/internal/manifest"
	"github.com/harshul/launchpad/internal/placeholder"
	"github.com/harshul/launchpad/internal/workspace"
)

// ErrInvalidTarget reports a launch target that cannot be turned into a Spec.
var ErrInvalidTarget = errors.New("invalid launch target")

// EnvReader reads an env file and returns its variables.
type EnvReader func(path string) (map[string]string, error)

type builder struct {
	runtime string
}

// Option configures Build.
type Option func(*builder)

// WithRuntime overrides the default runtime executable.
func WithRuntime(runtime string) Option {
	return func(b *builder) {
		if runtime != "" {
			b.runtime = runtime
		}
	}
}

// Build substitutes every path, env value and argument of target against
// paths and returns the resulting Spec along with the paths it used, whose
// Cwd reflects target.Cwd.
//
// paths.Package must already hold the located package directory when the
// target names a package. readEnv may be nil, in which case env file
// references are ignored.
func Build(target manifest.Target, paths placeholder.Paths, readEnv EnvReader, opts ...Option) (Spec, placeholder.Paths, error) {
	b := builder{runtime: DefaultRuntime}
	for _, opt := range opts {
		opt(&b)
	}

	if target.Package != "" && paths.Package == "" {
		return Spec{}, paths, fmt.Errorf("%w: package %q has not been located", workspace.ErrPackageNotFound, target.Package)
	}

	paths.Cwd = paths.Root
	if target.Cwd != "" {
		cwd := placeholder.Substitute(target.Cwd, paths)
		if !filepath.IsAbs(cwd) {
			cwd = filepath.Join(paths.Root, cwd)
		}
		paths.Cwd = cwd
	}

	spec := Spec{
		Cwd:    paths.Cwd,
		Script: placeholder.Substitute(target.Script, paths),
		Watch:  placeholder.SubstituteAll(target.Watch, paths),
		Ignore: placeholder.SubstituteAll(target.Ignore, paths),
		Env:    buildEnv(target, paths, readEnv),
	}
	if spec.Script == "" {
		return Spec{}, paths, fmt.Errorf("%w: target %q has no script", ErrInvalidTarget, target.ID())
	}

	nodeArgs, scriptArgs, err := parseArgs(target.Args)
	if err != nil {
		return Spec{}, paths, fmt.Errorf("%w: target %q: %v", ErrInvalidTarget, target.ID(), err)
	}
	spec.Args = placeholder.SubstituteAll(scriptArgs, paths)

	if target.Exec != "" {
		spec.Exec = placeholder.Substitute(target.Exec, paths)
		spec.Command = strings.Fields(spec.Exec)
		if len(spec.Command) == 0 {
			return Spec{}, paths, fmt.Errorf("%w: target %q has a blank exec", ErrInvalidTarget, target.ID())
		}
		return spec, paths, nil
	}

	spec.Command = []string{b.runtime}
	if target.Inspect != "" {
		spec.Command = append(spec.Command, "--inspect="+target.Inspect)
	}
	spec.Command = append(spec.Command, placeholder.SubstituteAll(nodeArgs, paths)...)
	spec.Exec = strings.Join(spec.Command, " ")
	return spec, paths, nil
}

// buildEnv loads the env file, if any, and overlays the inline variables.
// Inline variables win over file values.
func buildEnv(target manifest.Target, paths placeholder.Paths, readEnv EnvReader) map[string]string {
	env := make(map[string]string)

	if file, ok := target.EnvFile(); ok && readEnv != nil {
		path := placeholder.Substitute(file, paths)
		vars, err := readEnv(path)
		if err != nil {
			// A missing or broken env file never stops a launch.
			slog.Debug("ignoring env file", "file", path, "error", err)
		}
		for k, v := range vars {
			env[k] = v
		}
	}

	for k, v := range target.Env {
		if k == manifest.EnvFileKey {
			continue
		}
		env[k] = placeholder.Substitute(v, paths)
	}
	return env
}

// parseArgs splits the args container of a target into runtime and script
// arguments.
func parseArgs(raw any) (node, script []string, err error) {
	if raw == nil {
		return nil, nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("args must be an object, got %T", raw)
	}
	if node, err = stringList(m, "node"); err != nil {
		return nil, nil, err
	}
	if script, err = stringList(m, "script"); err != nil {
		return nil, nil, err
	}
	return node, script, nil
}

func stringList(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("args.%s must be a list, got %T", key, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("args.%s[%d] must be a string, got %T", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}
