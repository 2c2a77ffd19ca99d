package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type itemDto struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"min=0"`
}

func TestDecodeValid(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantField  string
	}{
		{name: "valid", body: `{"product_id":7,"quantity":2}`, wantOK: true, wantStatus: http.StatusOK},
		{name: "malformed json", body: `{"product_id":`, wantStatus: http.StatusBadRequest},
		{name: "missing product", body: `{"quantity":2}`, wantStatus: http.StatusBadRequest, wantField: "ProductID"},
		{name: "negative quantity", body: `{"product_id":7,"quantity":-1}`, wantStatus: http.StatusBadRequest, wantField: "Quantity"},
	}
	validate := validator.New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var dst itemDto
			ok := DecodeValid(rec, req, discard, validate, &dst)

			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, int64(7), dst.ProductID)
				return
			}
			assert.Equal(t, tc.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			if tc.wantField != "" {
				assert.Contains(t, body["validation_errors"], tc.wantField)
			}
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	testCases := []struct {
		name   string
		query  string
		want   int64
		wantOK bool
	}{
		{name: "absent uses default", query: "", want: 8, wantOK: true},
		{name: "in range", query: "?limit=3", want: 3, wantOK: true},
		{name: "out of range", query: "?limit=0"},
		{name: "not a number", query: "?limit=abc"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
			got, ok := ParseQueryInt(req, rec, discard, "limit", 8, Between(1, 50))
			assert.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			} else {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestRequestIDInjector_PropagatesHeader(t *testing.T) {
	var seen string
	h := RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestRequestIDInjector_GeneratesID(t *testing.T) {
	var seen string
	h := RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "Panic recovered")
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestStructuredLogger_Levels(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		status int
		level  string
	}{
		{"success", "/api/cart/add", http.StatusOK, "INFO"},
		{"rejected", "/api/cart/add", http.StatusBadRequest, "WARN"},
		{"server error", "/api/cart/add", http.StatusBadGateway, "ERROR"},
		{"quiet path", "/healthz", http.StatusOK, "DEBUG"},
		{"quiet path failing", "/healthz", http.StatusServiceUnavailable, "ERROR"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			h := StructuredLogger(log, "/healthz", "/metrics")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.level, entry["level"])
			assert.Equal(t, "Request completed", entry["msg"])
			assert.Equal(t, tc.path, entry["path"])
			assert.EqualValues(t, tc.status, entry["status"])
		})
	}
}
