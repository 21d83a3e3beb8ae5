package batch

import "net/http"

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of one item of a bulk request.
type Result struct {
	id      string
	action  Action
	status  ItemStatus
	code    int
	errType string
	reason  string
}

// NewOK creates a successful batch result.
func NewOK(id string, action Action, code int) Result {
	return Result{id: id, action: action, status: StatusOK, code: code}
}

// NewError creates a failed batch result.
func NewError(id string, action Action, code int, errType, reason string) Result {
	return Result{id: id, action: action, status: StatusError, code: code, errType: errType, reason: reason}
}

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Action returns the bulk action the result belongs to.
func (r Result) Action() Action { return r.action }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Code returns the per-item HTTP status.
func (r Result) Code() int { return r.code }

// ErrType returns the backend error type, if any.
func (r Result) ErrType() string { return r.errType }

// Reason returns the backend error reason, if any.
func (r Result) Reason() string { return r.reason }

// Failed reports whether the item counts as a failure. Deleting a missing document does not.
func (r Result) Failed() bool {
	if r.status != StatusError {
		return false
	}
	return !(r.action == ActionDelete && r.code == http.StatusNotFound)
}

// Response is a decoded bulk response. Results are in request order.
type Response struct {
	Errors  bool
	Results []Result
}

// FirstFailure returns the first failed item and its position in the request.
func (r Response) FirstFailure() (Result, int, bool) {
	if !r.Errors {
		return Result{}, -1, false
	}
	for i, res := range r.Results {
		if res.Failed() {
			return res, i, true
		}
	}
	return Result{}, -1, false
}
