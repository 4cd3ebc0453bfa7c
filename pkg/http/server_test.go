package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "FXSignals/pkg/logger"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/boom", func(echo.Context) error { panic("boom") })
	e.GET("/app-error", func(c echo.Context) error {
		return AppErrorResponse(c, NewAppError("ERR_PAIR", "pair", "pair not tradable", http.StatusUnprocessableEntity))
	})
	e.GET("/plain-error", func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("db down"))
	})
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := NewServer([]Handler{routes{}, nil}, WithMetrics("/metrics"), WithLogger(applogger.NewNop()))

	rec := serve(s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var env APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, env.Status)

	assert.Equal(t, http.StatusInternalServerError, serve(s, http.MethodGet, "/boom").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(s, http.MethodGet, "/app-error").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(s, http.MethodGet, "/plain-error").Code)

	rec = serve(s, http.MethodOptions, "/healthz")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fxsignals_http_requests_total")
}
