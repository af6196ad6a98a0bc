// Package pkgmanager drives the Node package manager subprocesses used by the
// deploy pipeline: a production-only dependency install and a named build
// script.
package pkgmanager

import (
	"fmt"

	"github.com/aetherengine/aether-cli/pkg/detect"
)

// Manager is the capability set the build stage needs from a package
// manager. The set of implementations is closed: npm, yarn and pnpm.
type Manager interface {
	// Kind identifies the manager.
	Kind() detect.Kind

	// InstallCommand returns the argv installing production dependencies only.
	InstallCommand() []string

	// BuildCommand returns the argv running the named package.json script.
	BuildCommand(script string) []string
}

type npm struct{}

func (npm) Kind() detect.Kind { return detect.KindNpm }
func (npm) InstallCommand() []string { return []string{"npm", "install", "--production"} }
func (npm) BuildCommand(script string) []string { return []string{"npm", "run", script} }

type yarn struct{}

func (yarn) Kind() detect.Kind { return detect.KindYarn }
func (yarn) InstallCommand() []string { return []string{"yarn", "install", "--production"} }
func (yarn) BuildCommand(script string) []string { return []string{"yarn", "run", script} }

type pnpm struct{}

func (pnpm) Kind() detect.Kind { return detect.KindPnpm }
func (pnpm) InstallCommand() []string { return []string{"pnpm", "install", "--prod"} }
func (pnpm) BuildCommand(script string) []string { return []string{"pnpm", "run", script} }

// ForKind returns the Manager for kind.
func ForKind(kind detect.Kind) (Manager, error) {
	switch kind {
	case detect.KindNpm:
		return npm{}, nil
	case detect.KindYarn:
		return yarn{}, nil
	case detect.KindPnpm:
		return pnpm{}, nil
	default:
		return nil, fmt.Errorf("unsupported package manager %q", kind)
	}
}

// Detect selects the Manager for projectDir by lock-file precedence.
func Detect(projectDir string) Manager {
	m, err := ForKind(detect.DetectPackageManager(projectDir).Manager)
	if err != nil {
		return npm{}
	}
	return m
}
