package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type parseTarget struct {
	ID      string `path:"id"`
	Page    int    `form:"page"`
	Enabled bool   `form:"enabled"`
}

func requestWithPathParam(method, url, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	req := httptest.NewRequest(method, url, nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestParsePathAndQueryFields(t *testing.T) {
	req := requestWithPathParam(http.MethodGet, "/jobs/abc?page=3&enabled=true", "id", "abc")
	var v parseTarget
	if err := Parse(req, &v); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.ID != "abc" || v.Page != 3 || !v.Enabled {
		t.Errorf("Parse = %+v, want {abc 3 true}", v)
	}
}

func TestParseJSONBody(t *testing.T) {
	body := strings.NewReader(`{"id":"from-body"}`)
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(body.Len())

	var v parseTarget
	if err := Parse(req, &v); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v.ID != "from-body" {
		t.Errorf("Parse = %+v, want ID=from-body", v)
	}
}

func TestParseNonPointerIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	if err := Parse(req, parseTarget{}); err != nil {
		t.Errorf("Parse with a non-pointer should no-op, got error: %v", err)
	}
}

func TestQueryIntDefaultAndParsed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jobs?page=5", nil)
	if got := QueryInt(req, "page", 1); got != 5 {
		t.Errorf("QueryInt(page) = %d, want 5", got)
	}
	if got := QueryInt(req, "missing", 9); got != 9 {
		t.Errorf("QueryInt(missing) = %d, want default 9", got)
	}
}

func TestQueryStringDefaultAndParsed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jobs?name=foo", nil)
	if got := QueryString(req, "name", "bar"); got != "foo" {
		t.Errorf("QueryString(name) = %q, want foo", got)
	}
	if got := QueryString(req, "missing", "bar"); got != "bar" {
		t.Errorf("QueryString(missing) = %q, want default bar", got)
	}
}

func TestOkJSONWritesStatus200(t *testing.T) {
	rec := httptest.NewRecorder()
	OkJSON(rec, map[string]string{"status": "ok"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %+v", body)
	}
}

func TestErrorWithReasonIncludesReason(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorWithReason(rec, http.StatusConflict, "job busy", "job_running")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Reason != "job_running" || body.Message != "job busy" {
		t.Errorf("body = %+v", body)
	}
}

func TestNotFoundDefaultMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("expected default not-found message, got %s", rec.Body.String())
	}
}

func TestTooLargeStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	TooLarge(rec, "")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
