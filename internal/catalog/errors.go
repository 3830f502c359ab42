package catalog

import (
	"errors"
	"fmt"

	"github.com/mmcdole/reel/internal/domain"
)

// User-facing messages for the last-error slot
const (
	MsgMissingCredential  = "API key missing"
	MsgOfflineUnavailable = "Movie is unavailable offline. Add it to favorites for offline access."
	MsgNoMovies           = "No movies found"
	MsgNoFilteredMovies   = "No movies found with selected filters"
	MsgNoResults          = "No results found"
)

// Describe renders err as the message published on the last-error slot.
// Transport wording ("Failed to load") differs from status and parse
// wording so a UI can offer retry vs. other affordances.
func Describe(op string, err error) string {
	if err == nil {
		return ""
	}
	var f *domain.Failure
	if !errors.As(err, &f) {
		return fmt.Sprintf("Failed to load %s: %v", op, err)
	}
	if f.Op != "" {
		op = f.Op
	}
	switch f.Kind {
	case domain.FailureTransport:
		return fmt.Sprintf("Failed to load %s: %s", op, f.Detail)
	case domain.FailureHTTP:
		return fmt.Sprintf("Error loading %s: code=%d, error: %s", op, f.Code, f.Body)
	case domain.FailureDecode:
		return fmt.Sprintf("Error parsing %s response: %s", op, f.Detail)
	case domain.FailureMissingCredential:
		return MsgMissingCredential
	case domain.FailureOfflineUnavailable:
		return MsgOfflineUnavailable
	case domain.FailureEmptyResult:
		if f.Detail != "" {
			return f.Detail
		}
		return MsgNoResults
	default:
		return f.Error()
	}
}
