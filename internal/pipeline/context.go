package pipeline

import (
	"time"

	"github.com/aetherengine/aether-cli/internal/config"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
	"github.com/aetherengine/aether-cli/pkg/deployment"
	"github.com/aetherengine/aether-cli/pkg/manifest"
	"github.com/aetherengine/aether-cli/pkg/storage"
)

// ConfirmFunc asks the operator whether an existing application should be
// redeployed
type ConfirmFunc func(app *api.Application) (bool, error)

// Options are the per-invocation inputs of a deploy. Empty fields fall back
// to aether.hcl, then to package.json.
type Options struct {
	// Name overrides the application name
	Name string

	// Runtime overrides the runtime, e.g. "node:18"
	Runtime string

	// Path is the project directory; "" means the current directory
	Path string

	// Force skips the redeploy confirmation
	Force bool

	// ArtifactPath is where the archive is written; "" picks a per-run temp file
	ArtifactPath string

	// Confirm is consulted when the application already exists. A nil
	// Confirm declines.
	Confirm ConfirmFunc
}

// Result describes how far a run got
type Result struct {
	State       State
	FailedStage Stage

	// Declined is set when the operator refused the redeploy
	Declined bool

	ProjectDir string
	Manifest   *manifest.Manifest
	Project    *config.ProjectConfig
	AppName    string
	Runtime    string
	Version    string

	Target     deployment.Target
	Artifact   *artifact.Artifact
	Upload     *storage.Result
	Deployment *api.Deployment

	StartedAt time.Time
	Duration  time.Duration
}
