package config

import (
	"sort"
)

// FileName is the optional project configuration file
const FileName = "aether.hcl"

// ProjectConfig is the decoded aether.hcl
type ProjectConfig struct {
	// Name overrides the package.json name as the application name
	Name string `hcl:"name,optional"`

	// Runtime overrides the runtime derived from engines.node, e.g. "node:18"
	Runtime string `hcl:"runtime,optional"`

	// BuildScript is the preferred package.json script to run
	BuildScript string `hcl:"build_script,optional"`

	// Force skips the redeploy confirmation
	Force bool `hcl:"force,optional"`

	// Env is exported to the install and build subprocesses
	Env map[string]string `hcl:"env,optional"`

	Variables []*VariableConfig `hcl:"variable,block"`
}

// VariableConfig declares a var.<name> usable in expressions
type VariableConfig struct {
	Name    string   `hcl:"name,label"`
	Default string   `hcl:"default,optional"`
	Env     []string `hcl:"env,optional"`
}

// EnvList returns Env as sorted KEY=VALUE pairs
func (c *ProjectConfig) EnvList() []string {
	if c == nil || len(c.Env) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
