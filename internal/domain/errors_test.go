package domain

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestTypedErrors_UnwrapToSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		msg      string
	}{
		{"configuration", NewConfigurationError("unknown %s", "x"), ErrConfiguration, "unknown x"},
		{"missing index", &MissingIndexError{Msg: "Index missing - run reindex"}, ErrMissingIndex,
			"Index missing - run reindex"},
		{"invalid query", &InvalidQueryError{Msg: "boom"}, ErrInvalidQuery, "boom"},
		{"unsupported", &UnsupportedVersionError{}, ErrUnsupportedVersion,
			"This version of kickdex requires Elasticsearch 7+ or OpenSearch 1+"},
		{"import", &ImportError{ID: "7", Reason: "mapper_parsing_exception: bad"}, ErrImport,
			"mapper_parsing_exception: bad on item with id '7'"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("search: %w", tc.err)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Errorf("expected errors.Is(%v, %v)", wrapped, tc.sentinel)
			}
			if tc.err.Error() != tc.msg {
				t.Errorf("Error() = %q, want %q", tc.err.Error(), tc.msg)
			}
		})
	}
}

func TestTransientTransportError(t *testing.T) {
	err := fmt.Errorf("bulk: %w", &TransientTransportError{Err: io.ErrUnexpectedEOF})

	if !IsTransient(err) {
		t.Fatal("expected transient error")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected cause to stay reachable")
	}
	if IsTransient(&InvalidQueryError{Msg: "x"}) {
		t.Error("invalid query must not be transient")
	}
}
