package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewHTTPServer(t *testing.T) {
	var cfg config.HTTPConfig
	cfg.Port = 8081
	cfg.MaxHeaderBytes = 4096
	cfg.Timeout.Read = time.Second
	cfg.Timeout.Write = 2 * time.Second
	cfg.Timeout.Idle = 3 * time.Second
	cfg.Timeout.ReadHeader = 500 * time.Millisecond

	srv := NewHTTPServer(cfg, "test", http.NotFoundHandler(), discard)

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 4096, srv.MaxHeaderBytes)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.Equal(t, 500*time.Millisecond, srv.ReadHeaderTimeout)
	assert.NotNil(t, srv.ErrorLog)
}

func TestNewChiRouter(t *testing.T) {
	mux := NewChiRouter(discard)
	mux.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSON(w, discard, http.StatusOK, web.Envelope{Success: true, Message: "ok"})
	})
	mux.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	testCases := []struct {
		name         string
		method       string
		target       string
		expectedCode int
		expectedBody string
	}{
		{"route", http.MethodGet, "/ok", http.StatusOK, `{"success":true,"message":"ok"}`},
		{"unknown route", http.MethodGet, "/missing", http.StatusNotFound, `{"success":false,"message":"Not found"}`},
		{"wrong method", http.MethodPost, "/ok", http.StatusMethodNotAllowed, `{"success":false,"message":"Method not allowed"}`},
		{"panic", http.MethodGet, "/panic", http.StatusInternalServerError, `{"success":false,"message":"Internal Server Error"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			req.Header.Set(web.RequestIDHeader, "req-1")
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			require.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			assert.Equal(t, "req-1", rr.Header().Get(web.RequestIDHeader))
		})
	}
}
