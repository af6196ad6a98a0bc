package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/internal/session"
	"github.com/aetherengine/aether-cli/internal/tui"
)

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Browse applications, follow logs and check status interactively",
		Action: func(c *cli.Context) error {
			if !isInteractive() {
				return fmt.Errorf("dashboard needs a terminal")
			}

			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			return tui.RunDashboard(c.Context, client, session.New(wd))
		},
	}
}
