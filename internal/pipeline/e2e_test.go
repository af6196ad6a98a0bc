package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
	"github.com/aetherengine/aether-cli/pkg/deployment"
	"github.com/aetherengine/aether-cli/pkg/pkgmanager"
	"github.com/aetherengine/aether-cli/pkg/storage"
)

type recordingRunner struct {
	commands [][]string
}

func (r *recordingRunner) Run(ctx context.Context, dir string, env []string, argv []string) ([]byte, error) {
	r.commands = append(r.commands, argv)
	return nil, nil
}

// controlPlane is an in-memory control plane and storage bucket
type controlPlane struct {
	mu          sync.Mutex
	apps        []api.Application
	deployments []api.Deployment
	objects     map[string]int64
}

func (cp *controlPlane) handler(t *testing.T, baseURL func() string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/apps", func(w http.ResponseWriter, r *http.Request) {
		cp.mu.Lock()
		defer cp.mu.Unlock()
		json.NewEncoder(w).Encode(cp.apps)
	})
	mux.HandleFunc("POST /api/v1/apps", func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateAppRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad create body: %v", err)
		}
		app := api.Application{ID: uuid.New(), Name: req.Name, Runtime: req.Runtime, CreatedAt: time.Now()}
		cp.mu.Lock()
		cp.apps = append(cp.apps, app)
		cp.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(app)
	})
	mux.HandleFunc("POST /api/v1/uploads/presigned-url", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AppID    string `json:"app_id"`
			Version  string `json:"version"`
			Filename string `json:"filename"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad presign body: %v", err)
		}
		key := "artifacts/" + req.AppID + "/" + req.Version + "/" + req.Filename
		json.NewEncoder(w).Encode(api.PresignedURL{
			UploadURL: baseURL() + "/demo-bucket/" + key + "?X-Amz-Signature=sig",
			S3Key:     key,
			ExpiresIn: 3600,
		})
	})
	mux.HandleFunc("PUT /demo-bucket/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != storage.ContentType {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		n, _ := io.Copy(io.Discard, r.Body)
		cp.mu.Lock()
		cp.objects[strings.TrimPrefix(r.URL.Path, "/demo-bucket/")] = n
		cp.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/v1/apps/{id}/deployments", func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateDeploymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad deployment body: %v", err)
		}
		dep := api.Deployment{ID: uuid.New(), AppID: req.AppID, Version: req.Version, Status: deployment.StatePending, ArtifactURL: req.ArtifactURL}
		cp.mu.Lock()
		cp.deployments = append(cp.deployments, dep)
		cp.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dep)
	})

	return mux
}

func TestExecute_EndToEnd(t *testing.T) {
	cp := &controlPlane{objects: make(map[string]int64)}
	var server *httptest.Server
	server = httptest.NewServer(cp.handler(t, func() string { return server.URL }))
	defer server.Close()

	dir := t.TempDir()
	writeProject(t, dir, `{"name":"demo-app","version":"2.0.0","scripts":{"build":"node build.js"}}`)
	artifactPath := filepath.Join(t.TempDir(), "demo-app.tar.gz")

	logger := hclog.NewNullLogger()
	client := api.NewClient(server.URL, "test-token", logger)
	runner := &recordingRunner{}

	executor := NewExecutor(Components{
		Auth:      client,
		Builder:   pkgmanager.NewRunner(runner, logger),
		Packager:  artifact.NewPackager(logger),
		Uploader:  storage.NewPresignedUploader(client, logger),
		Registrar: deployment.NewRegistrar(client, logger),
	}, logger)

	res, err := executor.Execute(context.Background(), Options{Path: dir, ArtifactPath: artifactPath})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if res.State != StateDone {
		t.Errorf("State = %s", res.State)
	}
	if len(cp.apps) != 1 || cp.apps[0].Name != "demo-app" {
		t.Errorf("expected one created app, got %+v", cp.apps)
	}
	if len(cp.deployments) != 1 || cp.deployments[0].Version != "2.0.0" {
		t.Fatalf("expected one deployment of 2.0.0, got %+v", cp.deployments)
	}
	if !strings.HasPrefix(cp.deployments[0].ArtifactURL, "s3://demo-bucket/artifacts/"+cp.apps[0].ID.String()+"/2.0.0/") {
		t.Errorf("ArtifactURL = %q", cp.deployments[0].ArtifactURL)
	}
	if len(cp.objects) != 1 {
		t.Errorf("expected one stored object, got %v", cp.objects)
	}
	if strings.Contains(res.Upload.ReadURL, "X-Amz-Signature") {
		t.Errorf("read URL should not carry the write signature: %s", res.Upload.ReadURL)
	}

	want := [][]string{{"npm", "install", "--production"}, {"npm", "run", "build"}}
	if len(runner.commands) != len(want) {
		t.Fatalf("commands = %v, want %v", runner.commands, want)
	}
	for i := range want {
		if strings.Join(runner.commands[i], " ") != strings.Join(want[i], " ") {
			t.Errorf("command %d = %v, want %v", i, runner.commands[i], want[i])
		}
	}

	if _, err := os.Stat(artifactPath); !os.IsNotExist(err) {
		t.Errorf("artifact should be removed, stat err = %v", err)
	}
}
