package mcp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/upbit-mcp/internal/common"
)

func newTestHandler(t *testing.T, token string) *Handler {
	t.Helper()
	s := newTestServer(t, newFakeUpbit(t, 200, `[]`), Access{})
	return NewHandler(s, token, common.NewSilentLogger())
}

func initializeRequest() *http.Request {
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	return req
}

func TestHandler_NoTokenConfigured(t *testing.T) {
	h := newTestHandler(t, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, initializeRequest())

	if rec.Code == http.StatusUnauthorized {
		t.Error("expected request to pass through when no token is configured")
	}
}

func TestHandler_MissingToken(t *testing.T) {
	h := newTestHandler(t, "secret-token")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, initializeRequest())

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Errorf("expected unauthorized body, got %s", rec.Body.String())
	}
}

func TestHandler_WrongToken(t *testing.T) {
	h := newTestHandler(t, "secret-token")

	req := initializeRequest()
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandler_ValidToken(t *testing.T) {
	h := newTestHandler(t, "secret-token")

	req := initializeRequest()
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Error("expected valid token to be accepted")
	}
}
