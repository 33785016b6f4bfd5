package export

import (
	"context"
	"fmt"
	"io"
)

// Sink kinds accepted by SinkConfig.
const (
	SinkDir = "dir"
	SinkS3  = "s3"
	SinkGCS = "gcs"
)

// SinkConfig selects and configures the destination of exported files.
type SinkConfig struct {
	Kind string    `json:"kind" mapstructure:"kind" yaml:"kind"`
	Dir  string    `json:"dir"  mapstructure:"dir"  yaml:"dir"`
	S3   S3Config  `json:"s3"   mapstructure:"s3"   yaml:"s3"`
	GCS  GCSConfig `json:"gcs"  mapstructure:"gcs"  yaml:"gcs"`
}

// NewSink builds the sink described by cfg. An empty kind selects a DirSink.
// The returned closer is nil when the sink holds no resources.
func NewSink(ctx context.Context, cfg SinkConfig) (Sink, io.Closer, error) {
	switch cfg.Kind {
	case "", SinkDir:
		return DirSink{Dir: cfg.Dir}, nil, nil
	case SinkS3:
		s, err := NewS3SinkFromConfig(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case SinkGCS:
		s, err := NewGCSSinkFromConfig(ctx, cfg.GCS)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("export: unknown sink kind %q", cfg.Kind)
	}
}
