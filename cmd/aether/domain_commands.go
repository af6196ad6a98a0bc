package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/pkg/api"
)

func domainCommand() *cli.Command {
	return &cli.Command{
		Name:  "domain",
		Usage: "Manage custom domains",
		Subcommands: []*cli.Command{
			domainAddCommand(),
			domainListCommand(),
			domainDeleteCommand(),
			domainVerifyCommand(),
		},
	}
}

// domainApp validates the argument count and resolves the app argument
func domainApp(c *cli.Context, nargs int, usage string) (*api.Client, *api.Application, error) {
	if c.NArg() != nargs {
		return nil, nil, fmt.Errorf("usage: aether domain %s", usage)
	}

	client, cfg, err := newClient(c)
	if err != nil {
		return nil, nil, err
	}
	if err := requireAuth(cfg); err != nil {
		return nil, nil, err
	}

	app, err := api.ResolveApp(c.Context, client, c.Args().First())
	if err != nil {
		return nil, nil, err
	}
	return client, app, nil
}

func domainAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Attach a custom domain to an application",
		ArgsUsage: "<app> <domain>",
		Action: func(c *cli.Context) error {
			client, app, err := domainApp(c, 2, "add <app> <domain>")
			if err != nil {
				return err
			}

			d, err := client.AddDomain(c.Context, app.ID, c.Args().Get(1))
			if err != nil {
				return err
			}

			fmt.Print(printMessage(Success, "✓ Added %s to %s", d.Domain, app.Name))
			fmt.Print(printMessage(Plain, "  Domain ID: %s", d.ID))
			fmt.Print(printMessage(Plain, "  Point a CNAME at %s, then run 'aether domain verify %s %s'", orDash(app.DeploymentURL), app.Name, d.Domain))
			return nil
		},
	}
}

func domainListCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List the custom domains of an application",
		ArgsUsage: "<app>",
		Action: func(c *cli.Context) error {
			client, app, err := domainApp(c, 1, "list <app>")
			if err != nil {
				return err
			}

			domains, err := client.ListDomains(c.Context, app.ID)
			if err != nil {
				return err
			}

			table, err := printDomainList(domains)
			if err != nil {
				return err
			}
			fmt.Print(table)
			return nil
		},
	}
}

func domainDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Remove a custom domain",
		ArgsUsage:   "<app> <domain>",
		Description: "The domain is given by name or by ID.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			client, app, err := domainApp(c, 2, "delete <app> <domain>")
			if err != nil {
				return err
			}
			d, err := api.ResolveDomain(c.Context, client, app.ID, c.Args().Get(1))
			if err != nil {
				return err
			}

			ok, err := confirm(c.Bool("yes"), fmt.Sprintf("Remove domain %s from %q?", d.Domain, app.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Print(printMessage(Warning, "Cancelled"))
				return nil
			}

			if err := client.DeleteDomain(c.Context, app.ID, d.ID); err != nil {
				return err
			}
			fmt.Print(printMessage(Success, "✓ Removed %s from %s", d.Domain, app.Name))
			return nil
		},
	}
}

func domainVerifyCommand() *cli.Command {
	return &cli.Command{
		Name:        "verify",
		Usage:       "Check DNS for a custom domain",
		ArgsUsage:   "<app> <domain>",
		Description: "The domain is given by name or by ID.",
		Action: func(c *cli.Context) error {
			client, app, err := domainApp(c, 2, "verify <app> <domain>")
			if err != nil {
				return err
			}
			target, err := api.ResolveDomain(c.Context, client, app.ID, c.Args().Get(1))
			if err != nil {
				return err
			}

			d, err := client.VerifyDomain(c.Context, app.ID, target.ID)
			if err != nil {
				return err
			}
			if !d.Verified {
				fmt.Print(printMessage(Warning, "%s is not verified yet, DNS changes can take a while", d.Domain))
				return nil
			}
			fmt.Print(printMessage(Success, "✓ %s verified", d.Domain))
			return nil
		},
	}
}
