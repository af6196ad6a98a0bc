package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/auth"
)

// loadConfig reads the local configuration with environment overrides and
// applies --api-url on top.
func loadConfig(c *cli.Context) (*auth.Config, error) {
	cfg, err := auth.Effective()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if url := c.String("api-url"); url != "" {
		cfg.APIEndpoint = url
	}
	return cfg, nil
}

// newClient builds a control-plane client from the effective configuration
func newClient(c *cli.Context) (*api.Client, *auth.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	return api.NewClient(cfg.APIEndpoint, cfg.AuthToken, hclog.Default()), cfg, nil
}

// requireAuth fails early with a hint when no token is configured
func requireAuth(cfg *auth.Config) error {
	if !cfg.IsAuthenticated() {
		return fmt.Errorf("%w: run 'aether login' first", api.ErrNotAuthenticated)
	}
	return nil
}

// isInteractive reports whether both stdin and stdout are terminals
func isInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
