package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals an invalid or incompatible option combination.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingIndex signals that the backend has no such index or search context.
	ErrMissingIndex = errors.New("missing index")
	// ErrInvalidQuery signals that the backend rejected the compiled query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnsupportedVersion signals a backend too old for the compiled query.
	ErrUnsupportedVersion = errors.New("unsupported backend version")
	// ErrImport signals that a bulk request contained a failed item.
	ErrImport = errors.New("import error")
	// ErrTransientTransport signals a connection-level failure talking to a backend.
	ErrTransientTransport = errors.New("transient transport error")
	// ErrNotFound signals a missing resource (model, record).
	ErrNotFound = errors.New("not found")
)

// ConfigurationError carries a usage message and unwraps to ErrConfiguration.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError formats a configuration error.
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// MissingIndexError unwraps to ErrMissingIndex.
type MissingIndexError struct {
	Msg string
}

func (e *MissingIndexError) Error() string { return e.Msg }

func (e *MissingIndexError) Unwrap() error { return ErrMissingIndex }

// InvalidQueryError unwraps to ErrInvalidQuery.
type InvalidQueryError struct {
	Msg string
}

func (e *InvalidQueryError) Error() string { return e.Msg }

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// UnsupportedVersionError unwraps to ErrUnsupportedVersion.
type UnsupportedVersionError struct{}

func (e *UnsupportedVersionError) Error() string {
	return "This version of kickdex requires Elasticsearch 7+ or OpenSearch 1+"
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// ImportError describes the first failed item of a bulk request.
type ImportError struct {
	ID     string
	Reason string
	// Method is the partial-data method of a failed update.
	Method string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s on item with id '%s'", e.Reason, e.ID)
}

func (e *ImportError) Unwrap() error { return ErrImport }

// TransientTransportError wraps a connection-level failure.
type TransientTransportError struct {
	Err error
}

func (e *TransientTransportError) Error() string {
	return ErrTransientTransport.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *TransientTransportError) Unwrap() []error { return []error{ErrTransientTransport, e.Err} }

// IsTransient reports whether err is a connection-level failure worth one retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientTransport)
}
