package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long a generated media URL stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage abstracts the object store holding training demo media.
// Only presigned-URL linking is supported; upload tracking and transcoding
// are outside this service.
type FileStorage interface {
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}
