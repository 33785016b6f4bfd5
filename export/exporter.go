package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/billing/report"
)

// NameLayout is the timestamp portion of an exported file name.
const NameLayout = "20060102_150405"

// Artifact is an encoded report table and where it was saved.
type Artifact struct {
	Name        string
	ContentType string
	Location    string
	Data        []byte
}

// FileName returns "<type>_report_<YYYYMMDD_HHMMSS>.<ext>" for rep.
func FileName(rep *report.Report, ext string) string {
	return fmt.Sprintf("%s_report_%s.%s", rep.Type, rep.GeneratedAt.Format(NameLayout), ext)
}

// Exporter flattens reports, encodes them and saves them through a Sink.
type Exporter struct {
	sink   Sink
	logger *slog.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithLogger sets the logger for the exporter.
func WithLogger(l *slog.Logger) ExporterOption {
	return func(e *Exporter) { e.logger = l }
}

// NewExporter creates an Exporter saving to sink.
func NewExporter(sink Sink, opts ...ExporterOption) *Exporter {
	e := &Exporter{sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes rep in format f. It returns (nil, nil) when the format is
// not tabular or the report flattens to no rows.
func (e *Exporter) Export(ctx context.Context, rep *report.Report, f Format) (*Artifact, error) {
	if !f.Tabular() {
		return nil, nil
	}
	enc, err := EncoderFor(f)
	if err != nil {
		return nil, err
	}

	table := Flatten(rep.Data)
	if table.Empty() {
		e.logger.Debug("report export skipped: no rows", "type", rep.Type)
		return nil, nil
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, table); err != nil {
		return nil, err
	}

	art := &Artifact{
		Name:        FileName(rep, enc.Extension()),
		ContentType: enc.ContentType(),
		Data:        buf.Bytes(),
	}
	art.Location, err = e.sink.Save(ctx, art.Name, art.ContentType, art.Data)
	if err != nil {
		return nil, fmt.Errorf("export: save %s: %w", art.Name, err)
	}

	e.logger.Info("report exported",
		"type", rep.Type,
		"location", art.Location,
		"rows", len(table.Rows),
	)
	return art, nil
}
