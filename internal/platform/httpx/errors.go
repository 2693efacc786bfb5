// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the transport layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooLarge     = errors.New("request body too large")
)

// Rule maps a domain error onto a problem status and title.
type Rule struct {
	Err    error
	Status int
	Title  string
}

var baseRules = []Rule{
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrValidation, http.StatusBadRequest, "Validation Failed"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{ErrTooLarge, http.StatusRequestEntityTooLarge, "Payload Too Large"},
}

// RespondError maps err to an RFC7807 response. Caller rules are checked
// before the package sentinels. Unmatched errors become a detail-less 500.
func RespondError(w http.ResponseWriter, err error, rules ...Rule) {
	if status, title, ok := match(err, rules); ok {
		Problem(w, status, title, err.Error())
		return
	}
	if status, title, ok := match(err, baseRules); ok {
		Problem(w, status, title, err.Error())
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func match(err error, rules []Rule) (int, string, bool) {
	for _, rule := range rules {
		if errors.Is(err, rule.Err) {
			return rule.Status, rule.Title, true
		}
	}
	return 0, "", false
}
