package api

import (
	"time"

	"github.com/google/uuid"
)

// Application is a deployable application owned by the control plane
type Application struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Runtime       string    `json:"runtime"`
	DeploymentURL string    `json:"deployment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Deployment is one registered version of an application
type Deployment struct {
	ID          uuid.UUID `json:"id"`
	AppID       uuid.UUID `json:"app_id"`
	Version     string    `json:"version"`
	Status      string    `json:"status"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomDomain is a domain attached to an application
type CustomDomain struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the authenticated account
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PresignedURL is a time-limited write credential for one storage object
type PresignedURL struct {
	UploadURL string `json:"upload_url"`
	S3Key     string `json:"s3_key"`
	ExpiresIn int64  `json:"expires_in"`
}

// CreateAppRequest is the payload for creating an application
type CreateAppRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Runtime     string `json:"runtime"`
}

// CreateDeploymentRequest is the payload for registering a deployment
type CreateDeploymentRequest struct {
	AppID       uuid.UUID `json:"app_id"`
	Version     string    `json:"version"`
	ArtifactURL string    `json:"artifact_url"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addDomainRequest struct {
	Domain string `json:"domain"`
}

type presignRequest struct {
	AppID    uuid.UUID `json:"app_id"`
	Version  string    `json:"version"`
	Filename string    `json:"filename"`
}

type logsResponse struct {
	Logs []string `json:"logs"`
}
