// Package manifest reads the project's package.json and derives the values the
// deploy pipeline needs from it: application name, version, runtime and the
// build script to run.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FileName is the manifest file looked up in the project root.
	FileName = "package.json"

	// DefaultVersion is used when the manifest omits "version".
	DefaultVersion = "1.0.0"

	// DefaultNodeVersion is used when engines.node is absent or unparseable.
	DefaultNodeVersion = "20"

	// RuntimeFamily is the runtime family every manifest maps to.
	RuntimeFamily = "node"
)

var (
	// ErrMissingManifest is returned when the project has no package.json.
	ErrMissingManifest = errors.New("missing manifest")

	// ErrMalformedManifest is returned when package.json exists but cannot be used.
	ErrMalformedManifest = errors.New("malformed manifest")
)

// BuildScriptCandidates are the script names tried, in order, for the build stage.
var BuildScriptCandidates = []string{"build", "compile", "prepare"}

// Engines mirrors the "engines" object of package.json.
type Engines struct {
	Node string `json:"node,omitempty"`
}

// Manifest is the subset of package.json the client cares about.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version,omitempty"`
	Engines      Engines           `json:"engines,omitempty"`
	Scripts      map[string]string `json:"scripts,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`

	// Path is the absolute path the manifest was read from.
	Path string `json:"-"`
}

// Read loads and validates the manifest in projectDir. It performs no network
// access and has no side effects.
func Read(projectDir string) (*Manifest, error) {
	path := filepath.Join(projectDir, FileName)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s not found", ErrMissingManifest, path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrMalformedManifest, path, err)
	}

	return Parse(data, path)
}

// Parse decodes manifest bytes. path is only used for error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedManifest, path, err)
	}

	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, fmt.Errorf("%w: %s: \"name\" is required", ErrMalformedManifest, path)
	}
	if m.Version == "" {
		m.Version = DefaultVersion
	}
	if m.Engines.Node == "" {
		m.Engines.Node = DefaultNodeVersion
	}
	m.Path = path

	return &m, nil
}

// Runtime returns the runtime identifier derived from engines.node.
func (m *Manifest) Runtime() string {
	return RuntimeFromVersion(m.Engines.Node)
}

// HasScript reports whether the manifest defines a non-empty script called name.
func (m *Manifest) HasScript(name string) bool {
	return strings.TrimSpace(m.Scripts[name]) != ""
}

// BuildScript returns the script the build stage should run, or "" when the
// project has nothing to build. A preferred script wins when it is defined.
func (m *Manifest) BuildScript(preferred string) string {
	if preferred != "" && m.HasScript(preferred) {
		return preferred
	}
	for _, name := range BuildScriptCandidates {
		if m.HasScript(name) {
			return name
		}
	}
	return ""
}

// RuntimeFromVersion maps a declared Node version to "node:<major>".
// Only a leading run of digits is accepted ("18.x" -> "node:18"); anything
// else falls back to the default major version.
func RuntimeFromVersion(version string) string {
	version = strings.TrimSpace(version)

	end := 0
	for end < len(version) && version[end] >= '0' && version[end] <= '9' {
		end++
	}
	if end == 0 {
		return RuntimeFamily + ":" + DefaultNodeVersion
	}

	major := strings.TrimLeft(version[:end], "0")
	if major == "" {
		return RuntimeFamily + ":" + DefaultNodeVersion
	}
	return RuntimeFamily + ":" + major
}
