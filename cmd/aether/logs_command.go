package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/internal/tui"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/logtail"
	"github.com/aetherengine/aether-cli/pkg/manifest"
)

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:      "logs",
		Usage:     "Show application logs",
		ArgsUsage: "[app]",
		Description: `Prints the last --lines lines. With --follow, polls the last 200 lines every
500ms and prints what is new.

Following is best effort: if more lines are written between two polls than
the window holds, the overflow is not shown. When the window changes without
growing, a single "Latest: <line>" notice is printed instead.

Without an app argument, the app is picked interactively, or taken from the
package.json of the current project.`,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "lines", Aliases: []string{"l"}, Value: 100, Usage: "Number of lines to show"},
			&cli.BoolFlag{Name: "follow", Aliases: []string{"f"}, Usage: "Keep polling for new lines"},
		},
		Action: func(c *cli.Context) error {
			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			app, err := logsTarget(c, client)
			if err != nil {
				if errors.Is(err, tui.ErrCancelled) {
					return nil
				}
				return err
			}

			lines := c.Int("lines")
			if lines <= 0 {
				return fmt.Errorf("--lines must be positive")
			}

			// A follow needs a full poll window as its baseline
			window := lines
			if c.Bool("follow") {
				window = max(lines, logtail.FollowLines)
			}

			initial, err := client.Logs(c.Context, app.ID, window)
			if err != nil {
				return err
			}
			shown := initial
			if len(shown) > lines {
				shown = shown[len(shown)-lines:]
			}
			for _, line := range shown {
				fmt.Println(line)
			}

			if !c.Bool("follow") {
				return nil
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			follower := logtail.NewFollower(client, app.ID, hclog.Default().Named("logs"))
			follower.Prime(initial)
			follower.Emit = func(line string) { fmt.Println(line) }
			return follower.Run(ctx)
		},
	}
}

// logsTarget resolves the app argument, falling back to an interactive pick
// or the current project's package.json name
func logsTarget(c *cli.Context, client *api.Client) (*api.Application, error) {
	if c.NArg() > 0 {
		return api.ResolveApp(c.Context, client, c.Args().First())
	}

	if isInteractive() {
		apps, err := client.ListApplications(c.Context)
		if err != nil {
			return nil, err
		}
		if len(apps) == 0 {
			return nil, fmt.Errorf("no applications found")
		}
		choices := make([]string, len(apps))
		for i, a := range apps {
			choices[i] = a.Name
		}
		idx, err := tui.RunSelect("Select an application", choices)
		if err != nil {
			return nil, err
		}
		return &apps[idx], nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := manifest.FindProjectRoot(wd)
	if err != nil {
		return nil, fmt.Errorf("no app given and no %s found: %w", manifest.FileName, err)
	}
	m, err := manifest.Read(root)
	if err != nil {
		return nil, err
	}
	return api.ResolveApp(c.Context, client, m.Name)
}
