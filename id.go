package billing

import "github.com/xraph/billing/id"

// IDGenerator produces invoice and payment identifiers.
type IDGenerator = id.Generator

// Prefix identifies the record kind encoded in an identifier.
type Prefix = id.Prefix
