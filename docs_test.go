package billing_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing"
	"github.com/xraph/billing/export"
	"github.com/xraph/billing/report"
	"github.com/xraph/billing/store/file"
)

// TestDocumentationExamples verifies that the package documentation examples work.
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from the package docs
	t.Run("QuickStartExample", func(t *testing.T) {
		dir := t.TempDir()

		// One JSON file per record
		s := file.New(dir)

		engine := billing.New(s,
			billing.WithLogger(slog.Default()),
			billing.WithExporter(export.NewExporter(export.DirSink{Dir: dir + "/reports"})),
		)

		ctx := context.Background()
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		amount := decimal.NewFromInt(2000)
		invoiceID, err := engine.CreateInvoice(ctx, billing.CreateInvoiceInput{
			ClientName: "TechCorp",
			Services:   []string{"Web Design"},
			Amount:     &amount,
		})
		if err != nil {
			t.Fatalf("CreateInvoice failed: %v", err)
		}

		if _, err := engine.RecordPayment(ctx, billing.RecordPaymentInput{
			InvoiceID:     invoiceID,
			Amount:        &amount,
			PaymentMethod: "credit_card",
		}); err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}

		inv, found, err := engine.GetInvoice(ctx, invoiceID)
		if err != nil || !found {
			t.Fatalf("GetInvoice failed: found=%v err=%v", found, err)
		}
		if inv.Status != billing.StatusPaid {
			t.Errorf("expected paid invoice, got %s", inv.Status)
		}

		now := time.Now()
		res, err := engine.GenerateReport(ctx, billing.ReportRequest{
			Type:   billing.ReportRevenue,
			Start:  now.Add(-time.Hour),
			End:    now.Add(time.Hour),
			Format: export.FormatCSV,
		})
		if err != nil {
			t.Fatalf("GenerateReport failed: %v", err)
		}
		if res.Export == nil {
			t.Fatal("expected a CSV export")
		}

		revenue := res.Report.Data.(*report.Revenue)
		if !revenue.TotalRevenue.Equal(amount) {
			t.Errorf("expected revenue %s, got %s", amount, revenue.TotalRevenue)
		}
	})
}
