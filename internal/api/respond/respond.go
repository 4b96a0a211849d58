// Package respond writes ladder payloads and the API error envelope.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/albapepper/hoopscore/internal/ladder"
	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// ErrorBody is the payload of every API error. Season carries the season
// label when the failure belongs to one season.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Season  string `json:"season,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes an encoded ladder, standings or leaders payload. The TTL
// is the season's response TTL: long for finished seasons, short for the
// current one.
func WriteJSON(w http.ResponseWriter, data []byte, etag string, ttl time.Duration, cacheHit bool) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Encoding")
	setCacheHeaders(w, ttl, cacheHit)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// WriteNotModified sends a 304 with the matching ETag.
func WriteNotModified(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusNotModified)
}

// WriteError sends an error that belongs to no particular season.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, ErrorBody{Code: code, Message: message})
}

// WriteErrorDetail is WriteError with a detail string.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	writeError(w, status, ErrorBody{Code: code, Message: message, Detail: detail})
}

// WriteLadderError maps a ladder service error onto an HTTP status. A
// non-zero season is named in the message and in the season field.
//
//	*ladder.ConfigurationError    400 INVALID_PARAMETER
//	context deadline or cancel    504 TIMEOUT
//	*provider.SchemaMismatchError 502 UPSTREAM_SCHEMA
//	*provider.FetchError          502 UPSTREAM_FETCH
//	ladder.ErrNoLeaders           503 NOT_CONFIGURED
//	anything else                 500 INTERNAL_ERROR
func WriteLadderError(w http.ResponseWriter, err error, s season.Season) {
	var (
		ce *ladder.ConfigurationError
		se *provider.SchemaMismatchError
		fe *provider.FetchError
	)
	body := ErrorBody{Detail: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &ce):
		// Threshold errors are about the query, not a season.
		writeError(w, http.StatusBadRequest, ErrorBody{
			Code: "INVALID_PARAMETER", Message: "Invalid query parameter", Detail: err.Error(),
		})
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status, body.Code, body.Message = http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"
		body.Detail = ""
	case errors.As(err, &se):
		status, body.Code, body.Message = http.StatusBadGateway, "UPSTREAM_SCHEMA", "Upstream document is missing expected data"
	case errors.As(err, &fe):
		status, body.Code, body.Message = http.StatusBadGateway, "UPSTREAM_FETCH", "Failed to fetch upstream data"
	case errors.Is(err, ladder.ErrNoLeaders):
		writeError(w, http.StatusServiceUnavailable, ErrorBody{
			Code: "NOT_CONFIGURED", Message: "Leaders source is not configured",
		})
		return
	default:
		body.Code, body.Message = "INTERNAL_ERROR", "Internal error"
	}

	if s != 0 {
		body.Season = s.Label()
		body.Message += " for season " + body.Season
	}
	writeError(w, status, body)
}

// WriteJSONObject marshals a Go value to JSON and writes it uncached.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: body})
}

func setCacheHeaders(w http.ResponseWriter, ttl time.Duration, cacheHit bool) {
	maxAge := int(ttl.Seconds())
	if cacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge/2))
}
