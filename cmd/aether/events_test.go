package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aetherengine/aether-cli/internal/pipeline"
	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/deployment"
	"github.com/aetherengine/aether-cli/pkg/nats"
	"github.com/aetherengine/aether-cli/pkg/storage"
)

func TestStageEvent(t *testing.T) {
	at := time.Now()
	tests := []struct {
		status pipeline.Status
		err    error
		want   nats.StageState
	}{
		{pipeline.StatusStarted, nil, nats.StageStarted},
		{pipeline.StatusSucceeded, nil, nats.StageSucceeded},
		{pipeline.StatusSkipped, nil, nats.StageSkipped},
		{pipeline.StatusFailed, errors.New("exit status 1"), nats.StageFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			ev := stageEvent(pipeline.Event{Stage: pipeline.StageBuild, Status: tt.status, App: "api", Version: "1.0.0", Err: tt.err}, at)
			if ev.State != tt.want || ev.Stage != "build" || ev.App != "api" || ev.Version != "1.0.0" || !ev.At.Equal(at) {
				t.Errorf("stageEvent() = %+v", ev)
			}
			if tt.err != nil && ev.Error != tt.err.Error() {
				t.Errorf("Error = %q", ev.Error)
			}
		})
	}
}

func TestDeploymentEvent(t *testing.T) {
	appID := uuid.New()
	depID := uuid.New()

	t.Run("declined", func(t *testing.T) {
		if _, ok := deploymentEvent(&pipeline.Result{Declined: true}, nil, time.Now()); ok {
			t.Error("declined run should not publish")
		}
		if _, ok := deploymentEvent(nil, errors.New("boom"), time.Now()); ok {
			t.Error("nil result should not publish")
		}
	})

	t.Run("succeeded", func(t *testing.T) {
		res := &pipeline.Result{
			AppName:    "api",
			Version:    "2.0.0",
			Target:     deployment.Target{AppID: appID},
			Upload:     &storage.Result{StorageURL: "s3://bucket/artifacts/x/2.0.0/1.tar.gz"},
			Deployment: &api.Deployment{ID: depID},
		}
		ev, ok := deploymentEvent(res, nil, time.Now())
		if !ok {
			t.Fatal("expected an event")
		}
		if ev.AppID != appID.String() || ev.DeploymentID != depID.String() || ev.ArtifactURL != res.Upload.StorageURL {
			t.Errorf("deploymentEvent() = %+v", ev)
		}
		if ev.Error != "" || ev.FailedStage != "" {
			t.Errorf("success carries failure fields: %+v", ev)
		}
	})

	t.Run("failed", func(t *testing.T) {
		res := &pipeline.Result{AppName: "api", Version: "2.0.0"}
		err := &pipeline.StageError{Stage: pipeline.StageUpload, Err: errors.New("access denied")}
		ev, ok := deploymentEvent(res, err, time.Now())
		if !ok {
			t.Fatal("expected an event")
		}
		if ev.FailedStage != "upload" || ev.Error != "access denied" || ev.AppID != "" {
			t.Errorf("deploymentEvent() = %+v", ev)
		}
	})
}

func TestReaderConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	app := &api.Application{Name: "api"}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := readerConfirm(strings.NewReader(tt.input), &out)(app)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), `"api" already exists`) {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestPlainListener(t *testing.T) {
	initColors(true)

	var out bytes.Buffer
	l := plainListener(&out)
	l(pipeline.Event{Stage: pipeline.StageInstall, Status: pipeline.StatusSkipped, Message: "node_modules already present"})
	l(pipeline.Event{Stage: pipeline.StageBuild, Status: pipeline.StatusStarted})
	l(pipeline.Event{Stage: pipeline.StageBuild, Status: pipeline.StatusSucceeded})
	l(pipeline.Event{Stage: pipeline.StageUpload, Status: pipeline.StatusFailed, Err: errors.New("boom")})

	want := "- Install dependencies (node_modules already present)\n○ Run build script...\n✓ Run build script\n✗ Upload artifact\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
