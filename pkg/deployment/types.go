package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aetherengine/aether-cli/pkg/api"
)

// ErrRegistrationFailed is matched by every *RegistrationError
var ErrRegistrationFailed = errors.New("registration failed")

// RegistrationError carries the control plane's status and body verbatim
type RegistrationError struct {
	Status int
	Body   string
	Err    error
}

func (e *RegistrationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("registration failed: %v", e.Err)
	}
	return fmt.Sprintf("registration failed with status %d: %s", e.Status, e.Body)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

func (e *RegistrationError) Is(target error) bool { return target == ErrRegistrationFailed }

// ControlPlane is the subset of the control-plane client the registrar needs
type ControlPlane interface {
	ListApplications(ctx context.Context) ([]api.Application, error)
	CreateApplication(ctx context.Context, req api.CreateAppRequest) (*api.Application, error)
	CreateDeployment(ctx context.Context, req api.CreateDeploymentRequest) (*api.Deployment, error)
}

// Common deployment states reported by the control plane
const (
	StatePending  = "pending"
	StateBuilding = "building"
	StateRunning  = "running"
	StateFailed   = "failed"
	StateStopped  = "stopped"
)

// Target identifies the application a deployment is registered against
type Target struct {
	AppID   uuid.UUID
	Name    string
	Runtime string
	Created bool
}
