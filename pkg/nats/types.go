package nats

import "time"

// StageState is the lifecycle state of one pipeline stage
type StageState string

const (
	StageStarted   StageState = "STARTED"
	StageSucceeded StageState = "SUCCEEDED"
	StageSkipped   StageState = "SKIPPED"
	StageFailed    StageState = "FAILED"
)

// StageEvent is published on every stage transition
type StageEvent struct {
	App     string     `json:"app"`
	Version string     `json:"version,omitempty"`
	Stage   string     `json:"stage"`
	State   StageState `json:"state"`
	Error   string     `json:"error,omitempty"`
	At      time.Time  `json:"at"`
}

// DeploymentEventPayload is published once per pipeline run
type DeploymentEventPayload struct {
	App          string    `json:"app"`
	AppID        string    `json:"appId,omitempty"`
	DeploymentID string    `json:"deploymentId,omitempty"`
	Version      string    `json:"version"`
	ArtifactURL  string    `json:"artifactUrl,omitempty"`
	FailedStage  string    `json:"failedStage,omitempty"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

// BuildLogPayload represents one line of build subprocess output
type BuildLogPayload struct {
	App       string `json:"app"`
	LogOutput string `json:"logOutput"` // "stdout" or "stderr"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
	Sequence  int    `json:"sequence"`
	Phase     string `json:"phase"` // "install" or "build"
}

// BuildLogEndPayload signals end of build logs
type BuildLogEndPayload struct {
	App    string `json:"app"`
	Status string `json:"status"` // "success" or "failed"
}
