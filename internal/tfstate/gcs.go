package tfstate

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
)

// GCSBackend reads Terraform state stored in a Google Cloud Storage bucket,
// the way the `gcs` backend lays it out.
type GCSBackend struct {
	bucket string
	client *storage.Client
}

// NewGCSBackend opens a client against the given bucket using ambient
// application default credentials.
func NewGCSBackend(ctx context.Context, bucket string) (*GCSBackend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("state bucket name must not be empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSBackend{bucket: bucket, client: client}, nil
}

// StatePath returns the object name the gcs backend writes for a prefix and
// the default workspace.
func StatePath(prefix string) string {
	return path.Join(prefix, "default.tfstate")
}

// ReadState fetches and parses the state object stored under the prefix.
func (b *GCSBackend) ReadState(ctx context.Context, prefix string) (*State, error) {
	data, err := b.ReadObject(ctx, StatePath(prefix))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ReadObject fetches a raw object from the state bucket.
func (b *GCSBackend) ReadObject(ctx context.Context, object string) ([]byte, error) {
	r, err := b.client.Bucket(b.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", b.bucket, object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", b.bucket, object, err)
	}
	return data, nil
}

func (b *GCSBackend) Close() error {
	return b.client.Close()
}
