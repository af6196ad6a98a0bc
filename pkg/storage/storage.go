package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/artifact"
)

const (
	// ReadURLExpiry is how long a returned read URL stays valid
	ReadURLExpiry = 24 * time.Hour

	// ContentType is sent with every artifact upload
	ContentType = "application/gzip"
)

// ErrUploadFailed is matched by every *UploadError
var ErrUploadFailed = errors.New("upload failed")

// Result is the outcome of one upload
type Result struct {
	// StorageURL is the opaque locator, s3://<bucket>/<key>
	StorageURL string `json:"storage_url"`

	// ReadURL is a time-limited URL for fetching the object
	ReadURL string `json:"read_url"`

	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Uploader stores an artifact under a derived key
type Uploader interface {
	Upload(ctx context.Context, art *artifact.Artifact, appID uuid.UUID, version string) (*Result, error)
}

// ObjectKey derives artifacts/<appID>/<version>/<unix>.tar.gz. The timestamp
// keeps repeated uploads of one version apart.
func ObjectKey(appID uuid.UUID, version string, now time.Time) string {
	return path.Join("artifacts", appID.String(), version, strconv.FormatInt(now.Unix(), 10)+"."+artifact.Extension)
}

// UploadError describes a failed upload with enough context to diagnose it.
// It never carries the secret key.
type UploadError struct {
	// Phase is one of "credential", "reachability" or "transfer"
	Phase       string
	Key         string
	Bucket      string
	AccessKeyID string
	AppID       string
	Err         error
}

func (e *UploadError) Error() string {
	msg := fmt.Sprintf("upload failed during %s: key=%s", e.Phase, e.Key)
	if e.Bucket != "" {
		msg += " bucket=" + e.Bucket
	}
	if e.AppID != "" {
		msg += " app=" + e.AppID
	}
	if e.AccessKeyID != "" {
		msg += " access_key=" + e.AccessKeyID
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrUploadFailed }

// MaskKeyID keeps the first four characters of an access key ID
func MaskKeyID(id string) string {
	if len(id) <= 4 {
		return "****"
	}
	return id[:4] + "****"
}

// NewUploader picks the direct-credential strategy when cfg is set and the
// presigned strategy otherwise.
func NewUploader(cfg *S3Config, presigner Presigner, logger hclog.Logger) (Uploader, error) {
	if cfg != nil {
		return NewS3Uploader(*cfg, logger)
	}
	if presigner == nil {
		return nil, errors.New("no storage strategy configured")
	}
	return NewPresignedUploader(presigner, logger), nil
}
