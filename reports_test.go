package billing_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/report"
)

func seedPayments(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	inv := h.createInvoice(t, techCorp())

	for _, a := range []string{"1000", "1500"} {
		h.clock.Advance(24 * time.Hour)
		_, err := h.engine.RecordPayment(ctx, billing.RecordPaymentInput{
			InvoiceID:     inv.ID,
			Amount:        amount(a),
			PaymentMethod: "credit_card",
		})
		require.NoError(t, err)
	}
}

func TestGenerateReportRevenue(t *testing.T) {
	h := newHarness(t)
	seedPayments(t, h)

	res, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{
		Type:  billing.ReportRevenue,
		Start: base,
		End:   base.AddDate(0, 0, 10),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Export)

	data := res.Report.Data.(*report.Revenue)
	assert.True(t, amount("2500").Equal(data.TotalRevenue))
	require.Len(t, data.MonthlyBreakdown, 1)
	assert.True(t, amount("2500").Equal(data.MonthlyBreakdown["2024-01"]))
	assert.True(t, amount("2500").Equal(data.AverageMonthlyRevenue))

	assert.Len(t, h.rec.kinds("report_generated"), 1)
	assert.Empty(t, h.rec.kinds("report_ready"))
}

func TestGenerateReportOutstandingAging(t *testing.T) {
	h := newHarness(t)
	h.createInvoice(t, techCorp())
	h.clock.Advance(75 * 24 * time.Hour)

	res, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{
		Type:  billing.ReportOutstanding,
		Start: base,
		End:   base.AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	data := res.Report.Data.(*report.Outstanding)
	require.Len(t, data.OutstandingInvoices, 1)
	assert.Equal(t, 45, data.OutstandingInvoices[0].DaysOverdue)
	assert.True(t, amount("2000").Equal(data.AgingAnalysis.Days60))
}

func TestGenerateReportUnknownType(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{Type: "profit"})
	require.Error(t, err)

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"type"}, verr.Fields)
	assert.ErrorIs(t, err, billing.ErrUnknownReportType)
	assert.True(t, billing.IsValidation(err))

	_, err = h.engine.GenerateReport(context.Background(), billing.ReportRequest{})
	assert.True(t, billing.IsValidation(err))
}

func TestGenerateReportUnknownFormat(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{
		Type:   billing.ReportRevenue,
		Format: "pdf",
	})

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"export_format"}, verr.Fields)
}

func TestGenerateReportExportAndEmail(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, billing.WithExporter(export.NewExporter(export.DirSink{Dir: dir})))
	seedPayments(t, h)

	to := &billing.Recipient{Email: "cfo@chromapages.test", Name: "CFO"}
	res, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{
		Type:    billing.ReportRevenue,
		Start:   base,
		End:     base.AddDate(0, 0, 10),
		Format:  export.FormatCSV,
		EmailTo: to,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Export)

	assert.Equal(t, "revenue_report_20240117_103000.csv", res.Export.Name)
	onDisk, err := os.ReadFile(res.Export.Location)
	require.NoError(t, err)
	assert.Equal(t, "month,revenue,total_revenue\n2024-01,2500,2500\n", string(onDisk))

	ready := h.rec.kinds("report_ready")
	require.Len(t, ready, 1)
	assert.Equal(t, *to, ready[0].To)
	assert.Same(t, res.Export, ready[0].Table)
}

func TestGenerateReportEmailWithoutTable(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{
		Type:    billing.ReportPaymentTrends,
		Format:  export.FormatJSON,
		EmailTo: &billing.Recipient{Email: "cfo@chromapages.test", Name: "CFO"},
	})
	require.NoError(t, err)

	ready := h.rec.kinds("report_ready")
	require.Len(t, ready, 1)
	assert.Nil(t, ready[0].Table)
}

func TestGenerateReportExportFailure(t *testing.T) {
	boom := errors.New("bucket gone")
	h := newHarness(t, billing.WithExporter(export.NewExporter(
		export.SinkFunc(func(context.Context, string, string, []byte) (string, error) { return "", boom }),
	)))
	seedPayments(t, h)

	res, err := h.engine.GenerateReport(context.Background(), billing.ReportRequest{
		Type:   billing.ReportRevenue,
		Start:  base,
		End:    base.AddDate(0, 0, 10),
		Format: export.FormatXLSX,
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.NotNil(t, res.Report)
	assert.Nil(t, res.Export)
}
