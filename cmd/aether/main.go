package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"
)

var (
	// Build-time variables set via ldflags
	// Example: go build -ldflags "-X main.Version=1.0.0"
	Version = "v0.4.0"
)

// reorderArgs moves flags after positional arguments to before them within subcommands
// This allows: aether domain delete my-app 1234 -y
// To work like: aether domain delete -y my-app 1234
func reorderArgs(args []string) []string {
	if len(args) <= 1 {
		return args
	}

	commands := map[string]bool{
		"register": true, "login": true, "logout": true, "whoami": true,
		"deploy": true, "list": true, "status": true, "logs": true,
		"delete": true, "domain": true, "s3": true, "dashboard": true,
		"help": true, "h": true,
	}

	subcommands := map[string]bool{
		"add": true, "list": true, "delete": true, "verify": true, "upload": true,
	}

	result := make([]string, 0, len(args))
	result = append(result, args[0])

	// Global flags stay where they are
	i := 1
	for ; i < len(args) && strings.HasPrefix(args[i], "-"); i++ {
		result = append(result, args[i])
		if globalValuedFlags[args[i]] && i+1 < len(args) {
			i++
			result = append(result, args[i])
		}
	}

	cmdPathEnd := i
	for ; i < len(args); i++ {
		arg := args[i]
		if commands[arg] || subcommands[arg] {
			result = append(result, arg)
			cmdPathEnd = i + 1
		} else {
			break
		}
	}

	var flags []string
	var positional []string
	skipNext := false

	valuedFlags := map[string]bool{
		"--name": true, "-n": true,
		"--runtime": true, "-r": true,
		"--path": true, "-p": true,
		"--lines": true, "-l": true,
		"--email": true, "--password": true,
	}

	for i := cmdPathEnd; i < len(args); i++ {
		arg := args[i]

		if skipNext {
			flags = append(flags, arg)
			skipNext = false
			continue
		}

		if arg == "--" {
			positional = append(positional, args[i:]...)
			break
		}

		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			if valuedFlags[arg] && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				skipNext = true
			}
		} else {
			positional = append(positional, arg)
		}
	}

	result = append(result, flags...)
	result = append(result, positional...)
	return result
}

var globalValuedFlags = map[string]bool{
	"--log-level": true,
	"--api-url":   true,
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "aether",
		Usage:                  "Deploy Node.js projects to the aether platform",
		Version:                Version,
		UseShortOptionHandling: true,
		EnableBashCompletion:   true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"AETHER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Control plane URL (overrides the saved endpoint)",
				EnvVars: []string{"AETHER_API_URL"},
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				EnvVars: []string{"NO_COLOR"},
			},
		},
		Commands: []*cli.Command{
			// Account
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),

			// Deploy
			deployCommand(),

			// Applications
			listCommand(),
			statusCommand(),
			logsCommand(),
			deleteCommand(),
			domainCommand(),

			// Storage
			s3Command(),

			// Interactive
			dashboardCommand(),
		},
		Before: func(c *cli.Context) error {
			level := hclog.LevelFromString(c.String("log-level"))
			if level == hclog.NoLevel {
				level = hclog.Info
			}
			color := hclog.AutoColor
			if c.Bool("no-color") {
				color = hclog.ColorOff
			}
			logger := hclog.New(&hclog.LoggerOptions{
				Name:   "aether",
				Level:  level,
				Color:  color,
				Output: os.Stderr,
			})
			hclog.SetDefault(logger)

			initColors(c.Bool("no-color"))
			return nil
		},
	}
}

func main() {
	// e.g., "aether delete my-app -y" works like "aether delete -y my-app"
	args := reorderArgs(os.Args)

	if err := newApp().Run(args); err != nil {
		fmt.Fprint(os.Stderr, printMessage(Error, "Error: %v", err))
		os.Exit(1)
	}
}
