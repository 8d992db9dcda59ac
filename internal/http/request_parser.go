// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: dashboard filter parameters, form parsing and method guards.

package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"fiado/internal/ledger"
)

// dateOnly is the layout of <input type="date"> values.
const dateOnly = "2006-01-02"

// ParseFilterParams extracts a dashboard filter from query parameters.
//
// filter=all|week|month|custom, person=<id>, start/end=YYYY-MM-DD. Unknown
// filter kinds degrade to all; a custom filter missing either bound gets no
// range, which the ledger treats as all.
func ParseFilterParams(query url.Values) ledger.Filter {
	f := ledger.Filter{Kind: ledger.FilterAll}

	switch ledger.FilterKind(strings.TrimSpace(query.Get("filter"))) {
	case ledger.FilterWeek:
		f.Kind = ledger.FilterWeek
	case ledger.FilterMonth:
		f.Kind = ledger.FilterMonth
	case ledger.FilterCustom:
		f.Kind = ledger.FilterCustom
	}

	f.PersonID = strings.TrimSpace(query.Get("person"))

	if f.Kind == ledger.FilterCustom {
		startStr := strings.TrimSpace(query.Get("start"))
		endStr := strings.TrimSpace(query.Get("end"))
		start, errStart := time.ParseInLocation(dateOnly, startStr, time.Local)
		end, errEnd := time.ParseInLocation(dateOnly, endStr, time.Local)
		if errStart == nil && errEnd == nil {
			// End bound is inclusive for the whole day.
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
			f.Range = &ledger.DateRange{Start: start, End: end}
		}
	}

	return f
}

// ParseDateOrNow parses a YYYY-MM-DD form value, defaulting to now when empty
// or malformed.
func ParseDateOrNow(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now()
	}
	t, err := time.ParseInLocation(dateOnly, value, time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de requisição inválido")
	}
	return nil
}
