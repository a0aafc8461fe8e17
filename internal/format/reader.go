// Package format defines the uniform reader contract shared by all import
// formats plus the generic field-mapping and tree-building helpers the
// per-format readers are built on.
package format

import "github.com/newhinton/keepassxc/internal/models"

// Reader converts one foreign export container into a canonical database.
//
// Convert is all-or-nothing: on any I/O, structural or cryptographic failure
// it returns a nil database and a descriptive error. Semantically incomplete
// records (e.g. a missing title) never abort a conversion; they are filled
// best-effort. Each successful call yields an independently owned tree; the
// only state a reader retains between calls is its last error.
type Reader interface {
	Convert(path, password string) (*models.Database, error)
	HasError() bool
	ErrorString() string
}

// ErrorTracker implements the HasError/ErrorString half of the Reader
// contract. Readers embed it and route Convert results through Capture.
type ErrorTracker struct {
	err error
}

// Capture records err (clearing any previous one) and returns it unchanged.
func (t *ErrorTracker) Capture(err error) error {
	t.err = err
	return err
}

// HasError reports whether the last Convert call failed.
func (t *ErrorTracker) HasError() bool { return t.err != nil }

// ErrorString returns the last failure's message, or "".
func (t *ErrorTracker) ErrorString() string {
	if t.err == nil {
		return ""
	}
	return t.err.Error()
}
