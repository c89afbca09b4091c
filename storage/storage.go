package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// BlobStorage stores and retrieves run artifacts (screenshots and
// similar binary files) by relative path.
type BlobStorage interface {
	// Upload stores data from the reader at the specified path,
	// overwriting any existing file.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves data from the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the data at the specified path.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a URL for accessing the data at the specified path.
	// For local storage this is a filesystem path; for S3 a presigned URL.
	GetURL(ctx context.Context, path string) (string, error)
}

// Config selects and configures a storage backend.
type Config struct {
	// Type is "local" or "s3".
	Type string

	// BaseDir is the root directory for local storage.
	BaseDir string

	// S3Bucket and S3Region configure the S3 backend.
	S3Bucket string
	S3Region string

	// S3PresignExpiry bounds the lifetime of presigned URLs. Zero uses
	// the backend default.
	S3PresignExpiry time.Duration
}

// New creates a BlobStorage implementation from the configuration.
func New(cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base_dir is required for local storage")
		}
		return NewLocalStorage(cfg.BaseDir)

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("bucket is required for S3 storage")
		}
		if cfg.S3Region == "" {
			return nil, fmt.Errorf("region is required for S3 storage")
		}

		s3Storage, err := NewS3Storage(cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		if cfg.S3PresignExpiry > 0 {
			s3Storage.presignExpiration = cfg.S3PresignExpiry
		}
		return s3Storage, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
