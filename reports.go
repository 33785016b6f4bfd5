package billing

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/types"
)

// ReportRequest selects a report, its window and what to do with it.
type ReportRequest struct {
	Type  report.Type `json:"type"       validate:"required"`
	Start time.Time   `json:"start_date"`
	End   time.Time   `json:"end_date"`

	// Format csv or xlsx also exports the report table. The default json
	// only returns the report.
	Format export.Format `json:"export_format,omitempty"`

	// EmailTo receives the report_ready notification, with the exported
	// table attached when there is one.
	EmailTo *types.Recipient `json:"email_to,omitempty"`
}

// ReportResult is a generated report and its exported table, if any.
type ReportResult struct {
	Report *report.Report
	Export *export.Artifact
}

// GenerateReport computes the requested report over the inclusive window
// [Start, End]. An unknown report type or export format is a
// *ValidationError. A failed export is returned together with the report.
func (e *Engine) GenerateReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	if err := e.validateInput(req); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{
			Fields:  []string{"type"},
			Message: "unknown report type " + string(req.Type),
			Err:     ErrUnknownReportType,
		}
	}
	format, err := export.ParseFormat(string(req.Format))
	if err != nil {
		return nil, &ValidationError{Fields: []string{"export_format"}, Message: err.Error(), Err: err}
	}

	started := time.Now()
	rep, err := e.reports.Generate(ctx, req.Type, req.Start, req.End)
	if err != nil {
		if errors.Is(err, report.ErrUnknownType) {
			return nil, &ValidationError{Fields: []string{"type"}, Message: err.Error(), Err: err}
		}
		return nil, storageErr("generate", "report", string(req.Type), err)
	}
	elapsed := time.Since(started)

	e.logger.Info("report generated",
		"type", rep.Type,
		"start", rep.Period.Start,
		"end", rep.Period.End,
		"elapsed", elapsed,
	)
	e.plugins.EmitReportGenerated(ctx, rep, elapsed)

	result := &ReportResult{Report: rep}
	var exportErr error
	if format.Tabular() {
		result.Export, exportErr = e.exporter.Export(ctx, rep, format)
		if exportErr != nil {
			e.logger.Error("report export failed", "type", rep.Type, "error", exportErr)
		}
	}

	if req.EmailTo != nil && !req.EmailTo.IsZero() {
		e.plugins.NotifyReportReady(ctx, rep, *req.EmailTo, result.Export)
	}

	return result, exportErr
}
