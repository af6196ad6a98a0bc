package pipeline

import (
	"fmt"
)

// State is a position in the deployment state machine
type State string

const (
	StateInit              State = "init"
	StateValidated         State = "validated"
	StateDependenciesReady State = "dependencies_ready"
	StateBuilt             State = "built"
	StatePackaged          State = "packaged"
	StateUploaded          State = "uploaded"
	StateRegistered        State = "registered"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Stage names one step of the pipeline
type Stage string

const (
	StageValidate Stage = "validate"
	StageResolve  Stage = "resolve"
	StageInstall  Stage = "install"
	StageBuild    Stage = "build"
	StagePackage  Stage = "package"
	StageUpload   Stage = "upload"
	StageRegister Stage = "register"
)

// Stages lists every stage in execution order
var Stages = []Stage{
	StageValidate,
	StageResolve,
	StageInstall,
	StageBuild,
	StagePackage,
	StageUpload,
	StageRegister,
}

// Title is the human label shown in progress output
func (s Stage) Title() string {
	switch s {
	case StageValidate:
		return "Validate project"
	case StageResolve:
		return "Resolve application"
	case StageInstall:
		return "Install dependencies"
	case StageBuild:
		return "Run build script"
	case StagePackage:
		return "Package artifact"
	case StageUpload:
		return "Upload artifact"
	case StageRegister:
		return "Register deployment"
	default:
		return string(s)
	}
}

// StageError reports which stage failed and why. errors.Is and errors.As see
// through it to the stage's own error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Status is the outcome carried by an Event
type Status string

const (
	StatusStarted   Status = "started"
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Event is delivered to listeners on every stage transition
type Event struct {
	Stage   Stage
	Status  Status
	State   State
	App     string
	Version string
	Message string
	Err     error
}

// Listener observes pipeline events. Listeners run synchronously on the
// pipeline goroutine and must not block.
type Listener func(Event)
