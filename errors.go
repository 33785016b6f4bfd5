package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/billing/report"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("billing: not found")
	ErrInvalidInput = errors.New("billing: invalid input")
	ErrStorage      = errors.New("billing: storage failure")

	// Record errors
	ErrInvoiceNotFound = errors.New("billing: invoice not found")
	ErrPaymentNotFound = errors.New("billing: payment not found")

	// Report errors
	ErrUnknownReportType = report.ErrUnknownType
)

// ValidationError lists every missing or invalid input field.
type ValidationError struct {
	Fields  []string
	Message string
	Err     error // optional cause
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "billing: validation failed: " + e.Message
	}
	return fmt.Sprintf("billing: validation failed for %s: %s", strings.Join(e.Fields, ", "), e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidInput) hold for validation failures.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StorageError wraps a failure of the underlying record store.
type StorageError struct {
	Op   string // create, get, update, scan
	Kind string // invoice, payment
	ID   string
	Err  error
}

func (e *StorageError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("billing: %s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("billing: %s %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) hold for storage failures.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op, kind, recordID string, err error) error {
	return &StorageError{Op: op, Kind: kind, ID: recordID, Err: err}
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "billing: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("billing: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrorOrNil returns e when it holds errors and nil otherwise.
func (e MultiError) ErrorOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsValidation returns true for input validation failures, including
// unknown report types.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrUnknownReportType)
}

// IsStorage returns true if the error came from the record store.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
