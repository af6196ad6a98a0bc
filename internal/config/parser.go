package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/aetherengine/aether-cli/internal/hclfunc"
)

// Load reads aether.hcl from projectDir. A missing file is not an error and
// yields a nil config.
func Load(projectDir string) (*ProjectConfig, error) {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	cfg, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// ParseFile parses an aether.hcl file
func ParseFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses aether.hcl content
func ParseBytes(data []byte, filename string) (*ProjectConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	// PASS 1: only the variable blocks matter here; var.X references in
	// attributes are expected to fail until pass 2
	var partial ProjectConfig
	_ = gohcl.DecodeBody(file.Body, hclfunc.NewEvalContext(nil), &partial)

	resolved := resolveVariables(partial.Variables)

	// PASS 2: decode with var.X available
	var cfg ProjectConfig
	diags = gohcl.DecodeBody(file.Body, hclfunc.NewEvalContext(resolved), &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration: %s", diags.Error())
	}

	return &cfg, nil
}

// resolveVariables takes each variable from the first non-empty env var it
// lists, then from its default
func resolveVariables(variables []*VariableConfig) map[string]string {
	resolved := make(map[string]string)

	for _, v := range variables {
		if v == nil {
			continue
		}

		var value string
		for _, envName := range v.Env {
			if envVal := os.Getenv(envName); envVal != "" {
				value = envVal
				break
			}
		}
		if value == "" {
			value = v.Default
		}

		resolved[v.Name] = value
	}

	return resolved
}
