package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type errorEnvelope struct {
	Status int        `json:"status"`
	Data   []AppError `json:"data"`
}

func serve(t *testing.T, e *echo.Echo, method, path string) (int, errorEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestErrorHandlerRendersRouterErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/api/prices/current", func(c echo.Context) error { return nil })

	code, env := serve(t, e, http.MethodGet, "/nope")
	if code != http.StatusNotFound || env.Status != http.StatusNotFound || env.Data[0].Code != "ERR_NOT_FOUND" {
		t.Fatalf("code=%d env=%+v", code, env)
	}

	code, env = serve(t, e, http.MethodPost, "/api/prices/current")
	if code != http.StatusMethodNotAllowed || env.Data[0].Code != "ERR_METHOD_NOT_ALLOWED" {
		t.Fatalf("code=%d env=%+v", code, env)
	}
}

func TestErrorHandlerKeepsAppErrorCode(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/x", func(c echo.Context) error {
		return ConflictError("already predicted").WithCode("ERR_DUPLICATE").WithError(errors.New("unique violation"))
	})

	code, env := serve(t, e, http.MethodGet, "/x")
	if code != http.StatusConflict || env.Data[0].Code != "ERR_DUPLICATE" || env.Data[0].Message != "already predicted" {
		t.Fatalf("code=%d env=%+v", code, env)
	}
}

func TestUnknownErrorsBecomeInternal(t *testing.T) {
	appErr := asAppError(errors.New("boom"))
	if appErr.Status != http.StatusInternalServerError || appErr.Code != "ERR_INTERNAL" {
		t.Fatalf("got %+v", appErr)
	}
	if got := NewStatusError(http.StatusTeapot, "tea").Code; got != "ERR_HTTP_418" {
		t.Fatalf("code = %s", got)
	}
}
