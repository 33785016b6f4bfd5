// Package id generates record identifiers for invoices and payments.
//
// The default generator produces TypeIDs ("inv_01h455vb4pex5vsknk084sn02q"),
// which are K-sortable (UUIDv7-based), globally unique and URL-safe.
// TimestampGenerator reproduces the legacy second-resolution format
// ("INV-20240115-103000") for stores that already hold such records.
package id

import (
	"fmt"
	"strings"
	"time"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record kind encoded in an identifier.
type Prefix string

// Prefix constants for all billing record kinds.
const (
	PrefixInvoice Prefix = "inv" // Invoice
	PrefixPayment Prefix = "pay" // Payment record
)

// Generator produces new record identifiers.
type Generator interface {
	Generate(prefix Prefix, now time.Time) (string, error)
}

// ──────────────────────────────────────────────────
// TypeID
// ──────────────────────────────────────────────────

// TypeIDGenerator generates "prefix_suffix" TypeIDs. The suffix embeds its
// own UUIDv7 timestamp, so the now argument is ignored.
type TypeIDGenerator struct{}

// Generate implements Generator.
func (TypeIDGenerator) Generate(prefix Prefix, _ time.Time) (string, error) {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		return "", fmt.Errorf("id: invalid prefix %q: %w", prefix, err)
	}
	return tid.String(), nil
}

// Parse validates a TypeID string and returns its prefix. Legacy timestamp
// identifiers are not TypeIDs and fail to parse.
func Parse(s string) (Prefix, error) {
	if s == "" {
		return "", fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("id: parse %q: %w", s, err)
	}

	return Prefix(tid.Prefix()), nil
}

// ──────────────────────────────────────────────────
// Legacy timestamp IDs
// ──────────────────────────────────────────────────

// TimestampLayout is the time portion of a legacy identifier.
const TimestampLayout = "20060102-150405"

// TimestampGenerator produces "<PREFIX>-YYYYMMDD-HHMMSS" identifiers.
//
// Two records of the same kind created within the same wall-clock second
// receive the same identifier and the later write overwrites the earlier.
type TimestampGenerator struct{}

// Generate implements Generator.
func (TimestampGenerator) Generate(prefix Prefix, now time.Time) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("id: empty prefix")
	}
	return strings.ToUpper(string(prefix)) + "-" + now.Format(TimestampLayout), nil
}
