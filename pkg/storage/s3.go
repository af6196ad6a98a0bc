package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/artifact"
)

// DefaultRegion is used when AETHER_S3_REGION is unset
const DefaultRegion = "us-east-1"

// S3Config holds long-lived, bucket-scoped credentials
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string

	// Endpoint targets an S3-compatible service; it switches to path-style addressing
	Endpoint string
}

// S3ConfigFromEnv reads AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
// AETHER_S3_BUCKET, AETHER_S3_REGION and AETHER_S3_ENDPOINT. It returns nil
// unless the key pair and bucket are all set.
func S3ConfigFromEnv(getenv func(string) string) *S3Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := &S3Config{
		AccessKeyID:     getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY"),
		Bucket:          getenv("AETHER_S3_BUCKET"),
		Region:          getenv("AETHER_S3_REGION"),
		Endpoint:        getenv("AETHER_S3_ENDPOINT"),
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	return cfg
}

// S3Uploader writes artifacts with direct bucket credentials
type S3Uploader struct {
	cfg     S3Config
	client  *s3.Client
	presign *s3.PresignClient
	logger  hclog.Logger
	now     func() time.Time
}

// NewS3Uploader creates an S3Uploader
func NewS3Uploader(cfg S3Config, logger hclog.Logger) (*S3Uploader, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("AWS access key ID and secret access key are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	client := s3.New(opts)

	return &S3Uploader{
		cfg:     cfg,
		client:  client,
		presign: s3.NewPresignClient(client),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Upload implements Uploader
func (u *S3Uploader) Upload(ctx context.Context, art *artifact.Artifact, appID uuid.UUID, version string) (*Result, error) {
	now := u.now()
	key := ObjectKey(appID, version, now)
	uerr := func(phase string, err error) error {
		return &UploadError{
			Phase:       phase,
			Key:         key,
			Bucket:      u.cfg.Bucket,
			AccessKeyID: MaskKeyID(u.cfg.AccessKeyID),
			AppID:       appID.String(),
			Err:         err,
		}
	}

	if _, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.cfg.Bucket)}); err != nil {
		return nil, uerr("reachability", describeAPIError(err))
	}

	f, err := os.Open(art.Path)
	if err != nil {
		return nil, uerr("transfer", fmt.Errorf("failed to open artifact: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, uerr("transfer", fmt.Errorf("failed to stat artifact: %w", err))
	}

	u.logger.Debug("uploading artifact", "key", key, "bucket", u.cfg.Bucket, "size", info.Size())

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType),
		Metadata: map[string]string{
			"app_id":      appID.String(),
			"version":     version,
			"uploaded_at": now.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, uerr("transfer", describeAPIError(err))
	}

	signed, err := u.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ReadURLExpiry))
	if err != nil {
		return nil, uerr("transfer", fmt.Errorf("failed to presign read url: %w", err))
	}

	u.logger.Info("artifact uploaded", "key", key, "bucket", u.cfg.Bucket)

	return &Result{
		StorageURL: fmt.Sprintf("s3://%s/%s", u.cfg.Bucket, key),
		ReadURL:    signed.URL,
		Key:        key,
		Size:       info.Size(),
	}, nil
}

func describeAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return err
}
