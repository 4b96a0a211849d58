package provider

import (
	"errors"
	"fmt"

	"github.com/albapepper/hoopscore/internal/season"
)

// ErrRateLimited is wrapped by FetchError when the upstream kept answering 429.
var ErrRateLimited = errors.New("rate limited")

// FetchError is a network or status failure talking to an upstream.
// Status is 0 when no HTTP response was received.
type FetchError struct {
	Source string
	Season season.Season
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: fetch failed", e.Source)
	if e.Season != 0 {
		msg = fmt.Sprintf("%s: fetch season %s failed", e.Source, e.Season.Label())
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaMismatchError means the upstream answered but an expected section of
// the document was absent. It is never retried.
type SchemaMismatchError struct {
	Source  string
	Season  season.Season
	Missing string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: season %s: expected %s not found", e.Source, e.Season.Label(), e.Missing)
}

// IsFetchError reports whether err carries a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsSchemaMismatch reports whether err carries a SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	var se *SchemaMismatchError
	return errors.As(err, &se)
}
