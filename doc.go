// Package billing records invoices and payments and derives financial
// reports from them.
//
// Billing is designed as a library, not a service. Import it into your Go
// application, pick a record store and drive it through the Engine:
//
//   - Invoice lifecycle: create, look up, change status, sweep overdue
//   - Payment recording with automatic settlement of fully paid invoices
//   - Five reports over a date window: revenue, outstanding (aging),
//     client analysis, service metrics and payment trends
//   - Tabular export of reports to CSV or XLSX on disk, S3 or GCS
//   - Notifications and audit through plugins
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/billing"
//	    "github.com/xraph/billing/store/file"
//	)
//
//	// One JSON file per record under ./data
//	s := file.New("data")
//
//	engine := billing.New(s, billing.WithLogger(logger))
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
//	amount := decimal.NewFromInt(2000)
//	invoiceID, err := engine.CreateInvoice(ctx, billing.CreateInvoiceInput{
//	    ClientName: "TechCorp",
//	    Services:   []string{"Web Design"},
//	    Amount:     &amount,
//	})
//
// # Stores
//
// Every store keeps one unit of storage per record: a file, a row, a
// document or a key. Available backends are memory, file, sqlite, postgres,
// mongo and redis. Reports scan the full record set on every call, so their
// cost grows with the total number of stored records.
//
// # Plugins
//
// Notifications are not sent by the engine itself. Plugins implementing the
// notifier interfaces in package plugin receive invoice_created,
// reminder_due, payment_confirmed and report_ready events. The email
// notifier in notify/email delivers them over SMTP and notify/pubsub
// publishes them to Google Cloud Pub/Sub. A failing plugin never fails the
// write that triggered it.
//
// # Forge and CLI
//
// Package extension mounts the engine in a Forge application and registers
// it in the DI container. cmd/billing is a command line front end configured
// through billing.yaml and BILLING_* environment variables.
//
// # Identifiers
//
// Records use TypeIDs by default:
//
//	inv_01h455vb4pex5vsknk084sn02q  // Invoice ID
//	pay_01h455vb4pex5vsknk084sn02q  // Payment ID
//
// id.TimestampGenerator produces the older INV-20240115-103000 format.
package billing
