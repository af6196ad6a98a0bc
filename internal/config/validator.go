package config

import (
	"fmt"
	"regexp"

	"github.com/aetherengine/aether-cli/pkg/manifest"
)

var (
	runtimePattern = regexp.MustCompile(`^[a-z]+:[0-9]+$`)
	envKeyPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate checks a decoded configuration
func Validate(cfg *ProjectConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Name != "" {
		if err := manifest.ValidateName(cfg.Name); err != nil {
			return err
		}
	}

	if cfg.Runtime != "" && !runtimePattern.MatchString(cfg.Runtime) {
		return fmt.Errorf("runtime %q must look like <family>:<major>, e.g. node:20", cfg.Runtime)
	}

	for key := range cfg.Env {
		if !envKeyPattern.MatchString(key) {
			return fmt.Errorf("env key %q is not a valid environment variable name", key)
		}
	}

	seen := make(map[string]bool)
	for _, v := range cfg.Variables {
		if seen[v.Name] {
			return fmt.Errorf("duplicate variable %q", v.Name)
		}
		seen[v.Name] = true
	}

	return nil
}
