package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/internal/pipeline"
	"github.com/aetherengine/aether-cli/internal/tui"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
	"github.com/aetherengine/aether-cli/pkg/deployment"
	"github.com/aetherengine/aether-cli/pkg/nats"
	"github.com/aetherengine/aether-cli/pkg/pkgmanager"
	"github.com/aetherengine/aether-cli/pkg/storage"
)

func deployCommand() *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "Build, package and deploy the Node.js project in the current directory",
		Description: `Runs validate, resolve, install, build, package, upload and register in order.
The first failing stage stops the run and is reported as "<stage>: <cause>".

Name and runtime come from the flags, then aether.hcl, then package.json.
An existing application is only redeployed after confirmation, or with --force.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Application name"},
			&cli.StringFlag{Name: "runtime", Aliases: []string{"r"}, Usage: "Runtime, e.g. node:20"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Project directory"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Redeploy an existing application without asking"},
		},
		Action: runDeploy,
	}
}

func runDeploy(c *cli.Context) error {
	client, cfg, err := newClient(c)
	if err != nil {
		return err
	}
	if err := requireAuth(cfg); err != nil {
		return err
	}

	interactive := isInteractive()

	logger := hclog.Default()
	if interactive && !logger.IsDebug() {
		// keep routine log lines from tearing the progress view
		logger = hclog.New(&hclog.LoggerOptions{Name: "aether", Level: hclog.Error, Output: os.Stderr})
	}

	execRunner := &pkgmanager.ExecRunner{}
	builder := pkgmanager.NewRunner(execRunner, logger)
	builder.Timeout = cfg.BuildTimeoutDuration()

	uploader, err := storage.NewUploader(storage.S3ConfigFromEnv(os.Getenv), client, logger)
	if err != nil {
		return err
	}

	executor := pipeline.NewExecutor(pipeline.Components{
		Auth:      client,
		Builder:   builder,
		Packager:  artifact.NewPackager(logger),
		Uploader:  uploader,
		Registrar: deployment.NewRegistrar(client, logger),
	}, logger)

	var publisher *eventPublisher
	if natsCfg := nats.ConfigFromEnv(); natsCfg != nil {
		nc, err := nats.NewClient(*natsCfg, logger)
		if err != nil {
			logger.Warn("deployment events disabled", "error", err)
		} else {
			publisher = newEventPublisher(nc, execRunner, logger)
			executor.AddListener(publisher.listener)
		}
	}

	opts := pipeline.Options{
		Name:    c.String("name"),
		Runtime: c.String("runtime"),
		Path:    c.String("path"),
		Force:   c.Bool("force"),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	var res *pipeline.Result
	if interactive {
		res, err = tui.RunDeployProgress(ctx, "Deploying", func(ctx context.Context, hooks tui.ProgressHooks) (*pipeline.Result, error) {
			builder.Notify = hooks.Notify
			executor.AddListener(hooks.Listener)
			opts.Confirm = hooks.Confirm
			return executor.Execute(ctx, opts)
		})
	} else {
		executor.AddListener(plainListener(os.Stdout))
		opts.Confirm = readerConfirm(os.Stdin, os.Stdout)
		res, err = executor.Execute(ctx, opts)
	}

	if publisher != nil {
		publisher.finish(res, err)
	}

	if err != nil {
		return err
	}
	if res.Declined {
		fmt.Print(printMessage(Warning, "Deployment cancelled, %s was not changed", res.AppName))
		return nil
	}

	summary, err := deploySummary(res)
	if err != nil {
		return err
	}
	fmt.Print(printMessage(Success, "✓ Deployed %s %s in %s", res.AppName, res.Version, formatDuration(res.Duration)))
	fmt.Print(summary)
	return nil
}

// plainListener prints one line per stage transition for non-terminal output
func plainListener(w io.Writer) pipeline.Listener {
	return func(ev pipeline.Event) {
		switch ev.Status {
		case pipeline.StatusStarted:
			fmt.Fprint(w, printMessage(Plain, "%s %s...", tui.MarkPending, ev.Stage.Title()))
		case pipeline.StatusSucceeded:
			fmt.Fprint(w, printMessage(Success, "%s %s", tui.MarkSuccess, ev.Stage.Title()))
		case pipeline.StatusSkipped:
			if ev.Message != "" {
				fmt.Fprint(w, printMessage(Warning, "%s %s (%s)", tui.MarkSkipped, ev.Stage.Title(), ev.Message))
				return
			}
			fmt.Fprint(w, printMessage(Warning, "%s %s", tui.MarkSkipped, ev.Stage.Title()))
		case pipeline.StatusFailed:
			fmt.Fprint(w, printMessage(Error, "%s %s", tui.MarkFailed, ev.Stage.Title()))
		}
	}
}

// readerConfirm asks on out and reads a y/N answer from in. EOF declines.
func readerConfirm(in io.Reader, out io.Writer) pipeline.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(app *api.Application) (bool, error) {
		fmt.Fprintf(out, "Application %q already exists. Deploy a new version? [y/N]: ", app.Name)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

func deploySummary(res *pipeline.Result) (string, error) {
	data := [][]string{
		{"Application", fmt.Sprintf("%s (%s)", res.AppName, res.Target.AppID)},
		{"Version", res.Version},
		{"Runtime", res.Runtime},
	}
	if res.Target.Created {
		data = append(data, []string{"Created", "yes"})
	}
	if res.Deployment != nil {
		data = append(data, [][]string{
			{"Deployment", res.Deployment.ID.String()},
			{"Status", res.Deployment.Status},
		}...)
	}
	if res.Upload != nil {
		data = append(data, []string{"Artifact", res.Upload.StorageURL})
	}
	if res.Artifact != nil {
		data = append(data, []string{"Size", formatSize(res.Artifact.Size)})
	}
	return detailsTable(data)
}
