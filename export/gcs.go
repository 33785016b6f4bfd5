package export

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig describes a Google Cloud Storage bucket. CredentialsJSON is
// optional; Application Default Credentials are used when it is empty.
type GCSConfig struct {
	Bucket          string `json:"bucket"           mapstructure:"bucket"           yaml:"bucket"`
	Prefix          string `json:"prefix"           mapstructure:"prefix"           yaml:"prefix"`
	CredentialsJSON string `json:"credentials_json" mapstructure:"credentials_json" yaml:"credentials_json"`
}

// GCSSink uploads exported files to a GCS bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink creates a sink writing to bucket under prefix.
func NewGCSSink(client *storage.Client, bucket, prefix string) *GCSSink {
	return &GCSSink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewGCSSinkFromConfig opens a storage client for cfg. Close the sink to
// release it.
func NewGCSSinkFromConfig(ctx context.Context, cfg GCSConfig) (*GCSSink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export: gcs bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("export: gcs client: %w", err)
	}
	return NewGCSSink(client, cfg.Bucket, cfg.Prefix), nil
}

// Save implements Sink. The location is a gs:// URI.
func (s *GCSSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := path.Join(s.prefix, name)

	wc := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("export: gcs write %s: %w", object, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("export: gcs close %s: %w", object, err)
	}
	return "gs://" + s.bucket + "/" + object, nil
}

// Close releases the storage client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
