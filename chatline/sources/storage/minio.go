package storage

import (
	"chatline/chatline/config"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient is the shared content area for uploaded attachments. Objects
// are keyed by their sanitized filename; a name collision overwrites the
// previous blob (last write wins, no versioning). Blobs are opaque: they are
// stored and served back byte-for-byte, never interpreted.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(cfg config.Config) (*MinIOClient, error) {
	// Use insecure for local (no HTTPS)
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: bucket}, nil
}

// PutAttachment stores the blob under filename. size may be -1 when the
// caller does not know it up front.
func (m *MinIOClient) PutAttachment(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, filename, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// OpenAttachment returns a reader over the stored blob and its content type.
// The caller owns closing the reader.
func (m *MinIOClient) OpenAttachment(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	// GetObject is lazy; Stat forces the first request so a missing object
	// surfaces here instead of on first read.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", err
	}
	return obj, info.ContentType, nil
}
