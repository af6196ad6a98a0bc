package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/internal/tui"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/auth"
)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Usage: "Account email"},
		&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)", EnvVars: []string{"AETHER_PASSWORD"}},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and store its token",
		Flags: credentialFlags(),
		Action: func(c *cli.Context) error {
			return authenticate(c, "Create an aether account", func(ctx context.Context, client *api.Client, email, password string) (*api.AuthResponse, error) {
				return client.Register(ctx, email, password)
			})
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session token",
		Flags: credentialFlags(),
		Action: func(c *cli.Context) error {
			return authenticate(c, "Log in to aether", func(ctx context.Context, client *api.Client, email, password string) (*api.AuthResponse, error) {
				return client.Login(ctx, email, password)
			})
		},
	}
}

type authFunc func(ctx context.Context, client *api.Client, email, password string) (*api.AuthResponse, error)

func authenticate(c *cli.Context, title string, fn authFunc) error {
	client, cfg, err := newClient(c)
	if err != nil {
		return err
	}

	if err := client.Health(c.Context); err != nil {
		return fmt.Errorf("cannot reach %s: %w", cfg.APIEndpoint, err)
	}

	email, password, err := credentials(c, title, cfg)
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			fmt.Print(printMessage(Warning, "Cancelled"))
			return nil
		}
		return err
	}

	resp, err := fn(c.Context, client, email, password)
	if err != nil {
		return err
	}

	if err := auth.SetToken(resp.Token, resp.User.Email); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Print(printMessage(Success, "✓ Logged in as %s", resp.User.Email))
	return nil
}

// credentials takes email and password from flags, prompting for whatever is
// missing when attached to a terminal
func credentials(c *cli.Context, title string, cfg *auth.Config) (string, string, error) {
	email, password := c.String("email"), c.String("password")
	if email != "" && password != "" {
		return email, password, nil
	}
	if !isInteractive() {
		return "", "", fmt.Errorf("--email and --password are required when not running in a terminal")
	}
	if email == "" {
		email = cfg.Email
	}
	return tui.RunCredentialsForm(title, email)
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Remove the stored token",
		Action: func(c *cli.Context) error {
			cfg, err := auth.Load()
			if err != nil {
				return err
			}
			if !cfg.IsAuthenticated() {
				fmt.Println("Not logged in")
				return nil
			}
			if err := auth.ClearToken(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Print(printMessage(Success, "✓ Logged out successfully"))
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Display the authenticated account",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: func(c *cli.Context) error {
			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			user, err := client.Me(c.Context)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(user)
			}

			table, err := detailsTable([][]string{
				{"ID", user.ID.String()},
				{"Email", user.Email},
				{"Endpoint", cfg.APIEndpoint},
				{"Member Since", user.CreatedAt.Format(timeLayout)},
			})
			if err != nil {
				return err
			}
			fmt.Print(table)
			return nil
		},
	}
}
