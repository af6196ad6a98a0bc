package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aetherengine/aether-cli/pkg/manifest"
)

func TestParseBytes(t *testing.T) {
	t.Setenv("AETHER_TEST_STAGE", "staging")

	src := `
variable "stage" {
  default = "dev"
  env     = ["AETHER_TEST_STAGE"]
}

variable "region" {
  default = "eu"
}

name         = concat("shop-", var.stage)
runtime      = "node:18"
build_script = "bundle"
force        = true

env = {
  NODE_ENV = "production"
  REGION   = upper(var.region)
}
`
	cfg, err := ParseBytes([]byte(src), FileName)
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}

	if cfg.Name != "shop-staging" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Runtime != "node:18" || cfg.BuildScript != "bundle" || !cfg.Force {
		t.Errorf("unexpected config %+v", cfg)
	}
	if got := strings.Join(cfg.EnvList(), ","); got != "NODE_ENV=production,REGION=EU" {
		t.Errorf("EnvList() = %q", got)
	}
}

func TestParseBytesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `name = `},
		{"unknown attribute", `include = ["docs"]`},
		{"wrong type", `force = "maybe please"`},
		{"undefined variable", `name = var.missing`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBytes([]byte(tt.src), FileName); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ProjectConfig
		wantErr bool
	}{
		{"empty", &ProjectConfig{}, false},
		{"valid", &ProjectConfig{Name: "demo-app", Runtime: "node:20", Env: map[string]string{"API_URL": "x"}}, false},
		{"nil", nil, true},
		{"bad name", &ProjectConfig{Name: "-bad-"}, true},
		{"bad runtime", &ProjectConfig{Runtime: "node"}, true},
		{"bad env key", &ProjectConfig{Env: map[string]string{"1BAD": "x"}}, true},
		{"duplicate variable", &ProjectConfig{Variables: []*VariableConfig{{Name: "a"}, {Name: "a"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := Validate(&ProjectConfig{Name: "-bad-"}); !errors.Is(err, manifest.ErrInvalidName) {
		t.Errorf("bad name should match ErrInvalidName, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil || cfg != nil {
		t.Fatalf("missing file should yield nil, nil; got %v, %v", cfg, err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`name = "api"`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "api" {
		t.Errorf("Name = %q", cfg.Name)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`runtime = "deno"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected validation error")
	}
}
