/*
Package storage stores user images in S3-compatible object storage and serves them
through a public base URL.
*/
package storage

import "context"

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicURL is the base URL under which stored objects are publicly readable.
	S3PublicURL string
}

// StorageService defines the public interface for the image storage service.
type StorageService interface {
	// Upload stores body under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// KeyFromURL maps a public URL returned by Upload back to its object key.
	KeyFromURL(publicURL string) (string, bool)
}

// NewStorageService is the factory function for StorageService.
// Currently, only S3 compatible implementations are supported.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}
