package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/api"
)

// Registrar resolves applications and records deployments
type Registrar struct {
	cp     ControlPlane
	logger hclog.Logger
}

// NewRegistrar creates a Registrar
func NewRegistrar(cp ControlPlane, logger hclog.Logger) *Registrar {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registrar{cp: cp, logger: logger}
}

// ResolveApplication returns the application with exactly this name, or nil
// when there is none.
func (r *Registrar) ResolveApplication(ctx context.Context, name string) (*api.Application, error) {
	apps, err := r.cp.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	app := api.FindByName(apps, name)
	if app != nil {
		r.logger.Debug("found existing application", "app", name, "id", app.ID)
	}
	return app, nil
}

// EnsureApplication returns target unchanged when it already has an ID and
// creates the application otherwise.
func (r *Registrar) EnsureApplication(ctx context.Context, target Target) (Target, error) {
	if target.AppID != uuid.Nil {
		return target, nil
	}

	app, err := r.cp.CreateApplication(ctx, api.CreateAppRequest{Name: target.Name, Runtime: target.Runtime})
	if err != nil {
		return target, toRegistrationError(err)
	}
	r.logger.Info("application created", "app", app.Name, "id", app.ID)

	target.AppID = app.ID
	target.Created = true
	return target, nil
}

// RegisterDeployment records a new deployment pointing at artifactURL
func (r *Registrar) RegisterDeployment(ctx context.Context, appID uuid.UUID, version, artifactURL string) (*api.Deployment, error) {
	dep, err := r.cp.CreateDeployment(ctx, api.CreateDeploymentRequest{
		AppID:       appID,
		Version:     version,
		ArtifactURL: artifactURL,
	})
	if err != nil {
		return nil, toRegistrationError(err)
	}
	r.logger.Info("deployment registered", "id", dep.ID, "version", dep.Version, "status", dep.Status)
	return dep, nil
}

func toRegistrationError(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &RegistrationError{Status: apiErr.Status, Body: apiErr.Body, Err: err}
	}
	return &RegistrationError{Err: err}
}
