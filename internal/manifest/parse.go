// Package manifest loads launch targets from a package.json (or YAML)
// manifest and selects the target a run was asked for.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the manifest read from the start directory.
const DefaultFile = "package.json"

var (
	// ErrManifestInvalid reports a missing, unreadable or structurally wrong manifest.
	ErrManifestInvalid = errors.New("invalid manifest")

	// ErrTargetNotFound reports that no launch entry matches the requested id.
	// It wraps ErrManifestInvalid.
	ErrTargetNotFound = fmt.Errorf("%w: launch target not found", ErrManifestInvalid)
)

// Format selects the decoder used by Parse.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no %s found in %s", ErrManifestInvalid, filepath.Base(path), filepath.Dir(path))
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrManifestInvalid, path, err)
	}
	return Parse(data, FormatFor(path))
}

// Parse decodes manifest content and checks that it carries a launch list.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrManifestInvalid, format, err)
	}
	if m.Launch == nil {
		return nil, fmt.Errorf("%w: manifest does not contain a valid launch list", ErrManifestInvalid)
	}
	return &m, nil
}
