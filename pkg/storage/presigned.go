package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/api"
	"github.com/aetherengine/aether-cli/pkg/artifact"
)

// Presigner issues write credentials for artifact keys. *api.Client satisfies it.
type Presigner interface {
	PresignedUploadURL(ctx context.Context, appID uuid.UUID, version, filename string) (*api.PresignedURL, error)
}

// PresignedUploader asks the control plane for a presigned PUT URL and
// streams the archive to it.
type PresignedUploader struct {
	presigner  Presigner
	httpClient *http.Client
	logger     hclog.Logger
	now        func() time.Time
}

// NewPresignedUploader creates a PresignedUploader
func NewPresignedUploader(presigner Presigner, logger hclog.Logger) *PresignedUploader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PresignedUploader{
		presigner: presigner,
		// Longer timeout for large uploads
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     logger,
		now:        time.Now,
	}
}

// Upload implements Uploader
func (u *PresignedUploader) Upload(ctx context.Context, art *artifact.Artifact, appID uuid.UUID, version string) (*Result, error) {
	key := ObjectKey(appID, version, u.now())
	uerr := func(phase string, err error) error {
		return &UploadError{Phase: phase, Key: key, AppID: appID.String(), Err: err}
	}

	cred, err := u.presigner.PresignedUploadURL(ctx, appID, version, path.Base(key))
	if err != nil {
		return nil, uerr("credential", err)
	}
	if cred.S3Key != "" {
		key = cred.S3Key
	}

	target, err := url.Parse(cred.UploadURL)
	if err != nil {
		return nil, uerr("credential", fmt.Errorf("invalid upload url: %w", redactURL(err)))
	}
	bucket := bucketFromURL(target)

	u.logger.Debug("uploading artifact", "key", key, "bucket", bucket, "size", art.Size)

	if err := u.put(ctx, cred.UploadURL, art); err != nil {
		return nil, &UploadError{Phase: "transfer", Key: key, Bucket: bucket, AppID: appID.String(), Err: err}
	}

	// The signature only grants writes; reads are signed by the control plane.
	read := *target
	read.RawQuery = ""
	read.Fragment = ""

	u.logger.Info("artifact uploaded", "key", key, "bucket", bucket)

	return &Result{
		StorageURL: fmt.Sprintf("s3://%s/%s", bucket, key),
		ReadURL:    read.String(),
		Key:        key,
		Size:       art.Size,
	}, nil
}

func (u *PresignedUploader) put(ctx context.Context, uploadURL string, art *artifact.Artifact) error {
	f, err := os.Open(art.Path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, f)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", redactURL(err))
	}
	req.Header.Set("Content-Type", ContentType)
	req.ContentLength = info.Size()

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// bucketFromURL reads the bucket from a virtual-hosted or path-style S3 URL
func bucketFromURL(u *url.URL) string {
	host := u.Hostname()
	if i := strings.Index(host, ".s3"); i > 0 {
		return host[:i]
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return first
}

// redactURL drops the query string from the URL inside a *url.Error. The
// query of a presigned URL holds the signing credential.
func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := *uerr
	redacted.URL, _, _ = strings.Cut(uerr.URL, "?")
	redacted.URL, _, _ = strings.Cut(redacted.URL, "#")
	return &redacted
}
