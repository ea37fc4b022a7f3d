package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sho-platform/sho-core/pkg/apperror"
)

func newHandlerFixture(t *testing.T) (*serviceFixture, *echo.Echo) {
	t.Helper()
	f := newFixture(t, nil)
	e := echo.New()
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(testLogger())
	RegisterRoutes(e, NewHandler(f.svc, testDB(), testLogger()))
	return f, e
}

func doJSON(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListKinds(t *testing.T) {
	_, e := newHandlerFixture(t)

	rec := doJSON(e, http.MethodGet, "/api/provider/kinds", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var kinds []KindDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &kinds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(kinds) != 4 {
		t.Fatalf("kinds = %d, want 4", len(kinds))
	}
	implemented := map[string]bool{}
	for _, k := range kinds {
		implemented[k.Kind] = k.Implemented
	}
	if !implemented["postgres"] {
		t.Error("postgres not reported as implemented")
	}
	if implemented["notion"] || implemented["airtable"] || implemented["sanity"] {
		t.Error("external kind wrongly reported as implemented")
	}
}

func TestHandler_GetConfigReturnsDefault(t *testing.T) {
	_, e := newHandlerFixture(t)

	rec := doJSON(e, http.MethodGet, "/api/orgs/org-a/provider", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Kind != "postgres" {
		t.Errorf("kind = %q, want postgres", resp.Kind)
	}
}

func TestHandler_SaveAndGetRedactsCredentials(t *testing.T) {
	_, e := newHandlerFixture(t)

	apiKey := "secret_" + strings.Repeat("a", 30)
	body := `{"kind":"notion","notion":{"apiKey":"` + apiKey + `"}}`
	rec := doJSON(e, http.MethodPut, "/api/orgs/org-a/provider", body,
		map[string]string{actorHeader: "user-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var saved SaveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.ConfigID == "" || saved.Kind != "notion" {
		t.Errorf("save response = %+v", saved)
	}

	rec = doJSON(e, http.MethodGet, "/api/orgs/org-a/provider", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), apiKey) {
		t.Error("response leaked the full api key")
	}

	var resp ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Notion == nil || !strings.HasPrefix(resp.Notion.APIKey, "secr") {
		t.Errorf("redacted key = %+v, want recognizable prefix", resp.Notion)
	}
}

func TestHandler_SaveWithoutActorIs401(t *testing.T) {
	_, e := newHandlerFixture(t)

	body := `{"kind":"notion","notion":{"apiKey":"secret_` + strings.Repeat("a", 30) + `"}}`
	rec := doJSON(e, http.MethodPut, "/api/orgs/org-a/provider", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandler_SaveInvalidConfigIs400WithViolations(t *testing.T) {
	_, e := newHandlerFixture(t)

	body := `{"kind":"sanity","sanity":{"apiUrl":"not-a-url","token":"bad"}}`
	rec := doJSON(e, http.MethodPut, "/api/orgs/org-a/provider", body,
		map[string]string{actorHeader: "user-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Violations []FieldViolation `json:"violations"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "bad_request" {
		t.Errorf("code = %q", envelope.Error.Code)
	}
	if len(envelope.Error.Details.Violations) < 3 {
		t.Errorf("violations = %v, want every failed field", envelope.Error.Details.Violations)
	}
}

func TestHandler_TestConfig(t *testing.T) {
	f, e := newHandlerFixture(t)
	f.probe.elapsed = 17 * time.Millisecond

	body := `{"kind":"notion","notion":{"apiKey":"secret_` + strings.Repeat("a", 30) + `"}}`
	rec := doJSON(e, http.MethodPost, "/api/provider/test", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp TestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.LatencyMs != 17 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandler_TestConfigFailureIs502(t *testing.T) {
	f, e := newHandlerFixture(t)
	f.probe.err = &ConnectionTestError{Kind: KindNotion, Reason: "connection refused"}

	body := `{"kind":"notion","notion":{"apiKey":"secret_` + strings.Repeat("a", 30) + `"}}`
	rec := doJSON(e, http.MethodPost, "/api/provider/test", body, nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_SwitchUnimplementedKindIs501(t *testing.T) {
	f, e := newHandlerFixture(t)
	f.probe.err = &ProviderInitError{Kind: KindNotion, Reason: "backend is not implemented yet"}

	body := `{"kind":"notion","notion":{"apiKey":"secret_` + strings.Repeat("a", 30) + `"}}`
	rec := doJSON(e, http.MethodPost, "/api/orgs/org-a/provider/switch", body,
		map[string]string{actorHeader: "admin-1"})
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501; body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_ClearConfig(t *testing.T) {
	f, e := newHandlerFixture(t)
	f.store.Set("org-a", validNotion())

	rec := doJSON(e, http.MethodDelete, "/api/orgs/org-a/provider", "",
		map[string]string{actorHeader: "admin-1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := f.store.Get("org-a"); ok {
		t.Error("override survived delete")
	}
}
