// Package repository defines the MySQL access layer for the booking
// attempts ledger and the sentinel errors shared by its callers.
package repository

import "errors"

// ErrAttemptNotFound is returned when an update or lookup matches no
// attempt row.  Handlers should translate this into an HTTP 404 response.
var ErrAttemptNotFound = errors.New("booking attempt not found")
