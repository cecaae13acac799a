package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket. Folders are object
// name prefixes.
type GCS struct {
	client *gcs.Client
	bucket string
}

// NewGCS uses application default credentials unless credentialsFile is set.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) EnsureFolder(_ context.Context, folder string) (string, error) {
	return cleanFolder(folder)
}

func (g *GCS) Save(ctx context.Context, folder, name, contentType string, data []byte) (File, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return File{}, err
	}
	if name, err = cleanName(name); err != nil {
		return File{}, err
	}
	objectName := path.Join(folder, name)

	wc := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return File{}, fmt.Errorf("gcs write %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return File{}, fmt.Errorf("gcs close %s: %w", objectName, err)
	}
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + g.bucket + "/" + objectName}
	return File{URL: u.String(), Name: name}, nil
}
