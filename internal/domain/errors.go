package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested record does not exist locally
	ErrNotFound = errors.New("record not found")

	// ErrEmptyReview indicates a review with neither a rating nor a comment
	ErrEmptyReview = errors.New("review needs a rating or a comment")

	// ErrInvalidRating indicates a review rating outside 0-5
	ErrInvalidRating = errors.New("review rating out of range")

	// ErrClosed indicates the store or service has been shut down
	ErrClosed = errors.New("closed")
)

// Catalog operation names, carried by Failure.Op
const (
	OpPopular  = "popular"
	OpSearch   = "search"
	OpDiscover = "discover"
	OpDetails  = "details"
	OpCredits  = "credits"
)

// FailureKind classifies why a catalog operation produced no data
type FailureKind int

const (
	// FailureTransport: no response reached the client
	FailureTransport FailureKind = iota
	// FailureHTTP: the server answered with a non-success status
	FailureHTTP
	// FailureDecode: the payload did not match the expected shape
	FailureDecode
	// FailureMissingCredential: no API key is configured
	FailureMissingCredential
	// FailureEmptyResult: success response that carried no items
	FailureEmptyResult
	// FailureOfflineUnavailable: remote failed and no local copy exists
	FailureOfflineUnavailable
)

// String returns a short name for the failure kind
func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureHTTP:
		return "http"
	case FailureDecode:
		return "decode"
	case FailureMissingCredential:
		return "missing_credential"
	case FailureEmptyResult:
		return "empty_result"
	case FailureOfflineUnavailable:
		return "offline_unavailable"
	default:
		return "unknown"
	}
}

// Failure is the typed error returned across the catalog client boundary.
type Failure struct {
	Kind   FailureKind
	Op     string // "popular", "search", "discover", "details", "credits"
	Code   int    // HTTP status for FailureHTTP
	Body   string // Response body excerpt for FailureHTTP
	Detail string // Human-readable cause
}

// Error implements the error interface
func (f *Failure) Error() string {
	switch f.Kind {
	case FailureHTTP:
		return fmt.Sprintf("%s: http %d: %s", f.Op, f.Code, f.Body)
	case FailureMissingCredential:
		return "API key missing"
	default:
		if f.Detail == "" {
			return fmt.Sprintf("%s: %s", f.Op, f.Kind)
		}
		return fmt.Sprintf("%s: %s: %s", f.Op, f.Kind, f.Detail)
	}
}

// Is lets errors.Is match failures by kind against a template failure
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && (t.Op == "" || t.Op == f.Op)
}

// KindOf returns the failure kind of err and whether err is a *Failure
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}

// IsOffline reports whether err means the remote service could not be reached
func IsOffline(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == FailureTransport
}
