package kickdex

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/kickdex/internal/domain"
)

// Sentinel errors shared with the server. Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrConfiguration          = domain.ErrConfiguration
	ErrMissingIndex           = domain.ErrMissingIndex
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrUnsupportedVersion     = domain.ErrUnsupportedVersion
	ErrImport                 = domain.ErrImport
	ErrTransientTransport     = domain.ErrTransientTransport
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError

	// ErrUnauthorized means the API key was missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

var codeSentinels = map[string]error{
	"not_found":                ErrNotFound,
	"configuration_error":      ErrConfiguration,
	"missing_index":            ErrMissingIndex,
	"invalid_query":            ErrInvalidQuery,
	"unsupported_version":      ErrUnsupportedVersion,
	"import_failed":            ErrImport,
	"backend_unavailable":      ErrTransientTransport,
	"embedding_provider_error": ErrEmbeddingProviderError,
	"unauthorized":             ErrUnauthorized,
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kickdex: %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the error code to its sentinel.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
