package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/aetherengine/aether-cli/internal/tui"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
	"github.com/aetherengine/aether-cli/pkg/storage"
)

func s3Command() *cli.Command {
	return &cli.Command{
		Name:  "s3",
		Usage: "Artifact storage operations",
		Subcommands: []*cli.Command{
			s3UploadCommand(),
		},
	}
}

func s3UploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload an existing archive for an application version",
		ArgsUsage: "<file> <app> <version>",
		Description: `Stores the archive under artifacts/<app-id>/<version>/ and prints its
locator and a read URL valid for 24 hours.

With AETHER_S3_BUCKET, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY set, the
upload goes straight to the bucket. Otherwise a presigned URL is requested
from the control plane.`,
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return fmt.Errorf("usage: aether s3 upload <file> <app> <version>")
			}
			file, ident, version := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

			client, cfg, err := newClient(c)
			if err != nil {
				return err
			}
			if err := requireAuth(cfg); err != nil {
				return err
			}

			art, err := artifactFromFile(file, version)
			if err != nil {
				return err
			}

			app, err := api.ResolveApp(c.Context, client, ident)
			if err != nil {
				return err
			}
			art.AppName = app.Name

			uploader, err := storage.NewUploader(storage.S3ConfigFromEnv(os.Getenv), client, hclog.Default())
			if err != nil {
				return err
			}

			var result *storage.Result
			task := func() error {
				var err error
				result, err = uploader.Upload(c.Context, art, app.ID, version)
				return err
			}
			message := fmt.Sprintf("Uploading %s (%s)", art.FileName(), formatSize(art.Size))
			if isInteractive() {
				err = tui.RunSpinnerWithTask(message, task)
			} else {
				fmt.Print(printMessage(Plain, "%s...", message))
				err = task()
			}
			if err != nil {
				return err
			}

			table, err := detailsTable([][]string{
				{"Locator", result.StorageURL},
				{"Key", result.Key},
				{"Size", formatSize(result.Size)},
				{"Read URL", result.ReadURL},
			})
			if err != nil {
				return err
			}
			fmt.Print(printMessage(Success, "✓ Uploaded"))
			fmt.Print(table)
			return nil
		},
	}
}

func artifactFromFile(path, version string) (*artifact.Artifact, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read archive: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected an archive", path)
	}
	return &artifact.Artifact{
		Path:      abs,
		Version:   version,
		Size:      info.Size(),
		BuildTime: info.ModTime(),
	}, nil
}
