package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func TestRespondErrorUsesCallerRulesFirst(t *testing.T) {
	rr := httptest.NewRecorder()
	err := fmt.Errorf("fetch: %w", errUpstream)
	RespondError(rr, err, Rule{errUpstream, http.StatusBadGateway, "Bad Gateway"})

	require.Equal(t, http.StatusBadGateway, rr.Code)
	p := decodeProblem(t, rr)
	require.Equal(t, "Bad Gateway", p.Title)
	require.Equal(t, "fetch: upstream down", p.Detail)
}

func TestRespondErrorBaseSentinels(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("%w: name required", ErrValidation))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	RespondError(rr, ErrNotFound)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pq: secret"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Empty(t, decodeProblem(t, rr).Detail)
}

func TestRespondErrorMaxBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, &http.MaxBytesError{Limit: 10})
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	err := DecodeJSON(req, &target)
	require.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	require.NoError(t, DecodeJSON(req, &target))
	require.Equal(t, "a", target.Name)
}

func TestAttachmentHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	Attachment(rr, "text/csv", "orders.csv")
	require.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename=orders.csv`, rr.Header().Get("Content-Disposition"))
}
