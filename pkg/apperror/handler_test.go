package apperror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	inner, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("body missing error envelope: %v", body)
	}
	return inner
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := HTTPErrorHandler(log)

	c, rec := newTestContext(http.MethodGet)
	handler(ErrConfigNotFound.WithDetails(map[string]any{"organizationId": "org-1"}), c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	errObj := decodeErrorBody(t, rec)
	if errObj["code"] != "config_not_found" {
		t.Errorf("code = %v", errObj["code"])
	}
	details, _ := errObj["details"].(map[string]any)
	if details["organizationId"] != "org-1" {
		t.Errorf("details = %v", errObj["details"])
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := HTTPErrorHandler(log)

	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, "unauthorized"},
		{"forbidden", http.StatusForbidden, "forbidden"},
		{"not found", http.StatusNotFound, "not_found"},
		{"bad request", http.StatusBadRequest, "bad_request"},
		{"validation", http.StatusUnprocessableEntity, "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet)
			handler(echo.NewHTTPError(tt.status, "nope"), c)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			errObj := decodeErrorBody(t, rec)
			if errObj["code"] != tt.wantCode {
				t.Errorf("code = %v, want %q", errObj["code"], tt.wantCode)
			}
		})
	}
}

func TestHTTPErrorHandler_UnknownError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := HTTPErrorHandler(log)

	c, rec := newTestContext(http.MethodGet)
	handler(errors.New("boom"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHTTPErrorHandler_HeadRequest(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := HTTPErrorHandler(log)

	c, rec := newTestContext(http.MethodHead)
	handler(ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response must have no body, got %q", rec.Body.String())
	}
}
