package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound        = errors.New("db: key not found")
	ErrUnsupportedCommand = errors.New("db: command not supported by server")
)

// Op constants map to Redis command names for error context.
const (
	OpDel     = "DEL"
	OpGet     = "GET"
	OpSet     = "SET"
	OpLPush   = "LPUSH"
	OpRPop    = "RPOP"
	OpLLen    = "LLEN"
	OpSAdd    = "SADD"
	OpSRem    = "SREM"
	OpSCard   = "SCARD"
	OpJSONSet = "JSON.SET"
	OpJSONGet = "JSON.GET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
