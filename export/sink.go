package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink persists an exported file and returns where it was stored.
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) (location string, err error)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, name, contentType string, data []byte) (string, error)

// Save implements Sink.
func (f SinkFunc) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	return f(ctx, name, contentType, data)
}

// DefaultDir is where DirSink writes when no directory is given.
const DefaultDir = "data/reports"

// DirSink writes files into a local directory, creating it on first use.
type DirSink struct {
	Dir string
}

// Save implements Sink.
func (s DirSink) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}
