package component

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
	"github.com/aetherengine/aether-cli/pkg/deployment"
	"github.com/aetherengine/aether-cli/pkg/manifest"
	"github.com/aetherengine/aether-cli/pkg/storage"
)

// ErrSkipped is wrapped by a stage implementation that had nothing to do.
// The pipeline treats it as success.
var ErrSkipped = errors.New("skipped")

// Builder installs dependencies and runs the project's build script
// (implemented by *pkgmanager.Runner)
type Builder interface {
	// Configure applies project overrides before the first subprocess runs
	Configure(script string, env []string)

	// EnsureDependencies installs production dependencies. It returns an
	// error wrapping ErrSkipped when they are already present.
	EnsureDependencies(ctx context.Context, projectDir string) error

	// RunBuildScript runs the first defined build script. It returns an
	// error wrapping ErrSkipped when the project defines none.
	RunBuildScript(ctx context.Context, projectDir string, m *manifest.Manifest) error
}

// Packager archives a built project (implemented by *artifact.Packager)
type Packager interface {
	// Pack writes the archive to dest, or a per-run temp path when dest is empty
	Pack(projectDir string, m *manifest.Manifest, dest string) (*artifact.Artifact, error)
}

// Uploader stores an artifact and returns its locator and read URL
// (implemented by *storage.PresignedUploader and *storage.S3Uploader)
type Uploader interface {
	Upload(ctx context.Context, art *artifact.Artifact, appID uuid.UUID, version string) (*storage.Result, error)
}

// Registrar resolves applications and records deployments
// (implemented by *deployment.Registrar)
type Registrar interface {
	// ResolveApplication returns the application with this exact name, or nil
	ResolveApplication(ctx context.Context, name string) (*api.Application, error)

	// EnsureApplication creates the target application when it has no ID yet
	EnsureApplication(ctx context.Context, target deployment.Target) (deployment.Target, error)

	// RegisterDeployment records a new deployment version
	RegisterDeployment(ctx context.Context, appID uuid.UUID, version, artifactURL string) (*api.Deployment, error)
}

// Authenticator reports whether credentials are present
// (implemented by *api.Client)
type Authenticator interface {
	IsAuthenticated() bool
}
