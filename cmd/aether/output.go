package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/aetherengine/aether-cli/pkg/api"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
)

const timeLayout = "2006-01-02 15:04:05"

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// initColors sets up color functions based on environment
func initColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// printMessage formats a message with color (if enabled), newline terminated
func printMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

func printTable(header []string, data [][]string, align ...tw.Align) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: align},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// detailsTable renders label/value pairs with right-aligned labels
func detailsTable(data [][]string) (string, error) {
	return printTable(nil, data, tw.AlignRight, tw.AlignLeft)
}

func printAppList(apps []api.Application) (string, error) {
	if len(apps) == 0 {
		return printMessage(Plain, "No applications found. Run 'aether deploy' to create one."), nil
	}

	header := []string{"ID", "Name", "Runtime", "URL", "Created At"}
	var data [][]string
	for _, app := range apps {
		data = append(data, []string{
			app.ID.String(),
			app.Name,
			app.Runtime,
			orDash(app.DeploymentURL),
			app.CreatedAt.Format(timeLayout),
		})
	}

	table, err := printTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing application list table: %w", err)
	}
	return table, nil
}

func printAppDetails(app *api.Application) (string, error) {
	data := [][]string{
		{"ID", app.ID.String()},
		{"Name", app.Name},
		{"Runtime", app.Runtime},
	}
	if app.Description != "" {
		data = append(data, []string{"Description", app.Description})
	}
	data = append(data,
		[][]string{
			{"URL", orDash(app.DeploymentURL)},
			{"Created At", app.CreatedAt.Format(timeLayout)},
			{"Updated At", app.UpdatedAt.Format(timeLayout)},
		}...,
	)

	table, err := detailsTable(data)
	if err != nil {
		return "", fmt.Errorf("printing application details table: %w", err)
	}
	return table, nil
}

// recentDeployments is how many deployments status shows
const recentDeployments = 5

func printDeployments(deployments []api.Deployment) (string, error) {
	if len(deployments) == 0 {
		return printMessage(Plain, "No deployments yet."), nil
	}
	if len(deployments) > recentDeployments {
		deployments = deployments[:recentDeployments]
	}

	header := []string{"ID", "Version", "Status", "Created At"}
	var data [][]string
	for _, d := range deployments {
		data = append(data, []string{
			d.ID.String(),
			d.Version,
			d.Status,
			d.CreatedAt.Format(timeLayout),
		})
	}

	table, err := printTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing deployments table: %w", err)
	}
	return table, nil
}

func printDomainList(domains []api.CustomDomain) (string, error) {
	if len(domains) == 0 {
		return printMessage(Plain, "No custom domains."), nil
	}

	header := []string{"ID", "Domain", "Verified", "Created At"}
	var data [][]string
	for _, d := range domains {
		verified := "no"
		if d.Verified {
			verified = "yes"
		}
		data = append(data, []string{
			d.ID.String(),
			d.Domain,
			verified,
			d.CreatedAt.Format(timeLayout),
		})
	}

	table, err := printTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing domain list table: %w", err)
	}
	return table, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatSize renders a byte count with binary units, e.g. 1.5 MiB
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatDuration rounds to the most useful precision for a summary line
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}
