package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/internal/tui"
	"github.com/aetherengine/aether-cli/pkg/api"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List applications",
		Action: func(c *cli.Context) error {
			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			apps, err := client.ListApplications(c.Context)
			if err != nil {
				return err
			}

			table, err := printAppList(apps)
			if err != nil {
				return err
			}
			fmt.Print(table)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show an application and its recent deployments",
		ArgsUsage: "<app>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "monitor", Aliases: []string{"m"}, Usage: "Also show the platform's health report for the app"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: aether status <app>")
			}

			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			app, err := api.ResolveApp(c.Context, client, c.Args().First())
			if err != nil {
				return err
			}
			deployments, err := client.ListDeployments(c.Context, app.ID)
			if err != nil {
				return err
			}

			details, err := printAppDetails(app)
			if err != nil {
				return err
			}
			recent, err := printDeployments(deployments)
			if err != nil {
				return err
			}

			fmt.Print(details)
			fmt.Println()
			fmt.Print(printMessage(Plain, "Recent deployments:"))
			fmt.Print(recent)

			if !c.Bool("monitor") {
				return nil
			}
			report, err := client.Monitor(c.Context, app.ID)
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Print(printMessage(Plain, "Monitor:"))
			for _, line := range report {
				fmt.Print(printMessage(Plain, "  %s", line))
			}
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an application",
		ArgsUsage: "<app>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: aether delete <app>")
			}

			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			app, err := api.ResolveApp(c.Context, client, c.Args().First())
			if err != nil {
				return err
			}

			ok, err := confirm(c.Bool("yes"), fmt.Sprintf("Delete application %q and all of its deployments?", app.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Print(printMessage(Warning, "Cancelled"))
				return nil
			}

			if err := client.DeleteApplication(c.Context, app.ID); err != nil {
				return err
			}
			fmt.Print(printMessage(Success, "✓ Deleted %s", app.Name))
			return nil
		},
	}
}

// confirm returns true when skip is set, otherwise asks on the terminal.
// Without a terminal, destructive commands require --yes.
func confirm(skip bool, prompt string) (bool, error) {
	if skip {
		return true, nil
	}
	if !isInteractive() {
		return false, fmt.Errorf("refusing to continue without a terminal, pass --yes to confirm")
	}
	return tui.RunConfirm(prompt)
}
