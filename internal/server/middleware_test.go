package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/app"
	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/handlers"
	"github.com/bobmcallan/openvault-portal/internal/models"
	"github.com/bobmcallan/openvault-portal/internal/session"
	"github.com/bobmcallan/openvault-portal/internal/storage/memory"
)

func newTestServer() *Server {
	return &Server{logger: common.NewSilentLogger()}
}

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// --- Correlation ID Middleware ---

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	s := newTestServer()

	var seen string
	handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(correlationIDKey).(string)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if seen == "" {
		t.Error("expected correlation ID in context")
	}
	if w.Header().Get("X-Correlation-ID") != seen {
		t.Errorf("expected header to match context ID %q, got %q", seen, w.Header().Get("X-Correlation-ID"))
	}
}

func TestCorrelationIDMiddleware_UsesProvidedID(t *testing.T) {
	s := newTestServer()
	handler := s.correlationIDMiddleware(http.HandlerFunc(ok))

	for _, header := range []string{"X-Request-ID", "X-Correlation-ID"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(header, "given-id")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Header().Get("X-Correlation-ID") != "given-id" {
			t.Errorf("%s: expected given-id, got %s", header, w.Header().Get("X-Correlation-ID"))
		}
	}
}

// --- Recovery Middleware ---

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	s := newTestServer()
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 after panic, got %d", w.Code)
	}
}

// --- Logging Middleware / responseWriter ---

func TestLoggingMiddleware_CapturesStatusCode(t *testing.T) {
	s := newTestServer()
	for _, status := range []int{http.StatusCreated, http.StatusNotFound, http.StatusBadGateway} {
		handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))
		if w.Code != status {
			t.Errorf("expected status %d, got %d", status, w.Code)
		}
	}
}

func TestResponseWriter_CapturesBytesAndFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	data := []byte("hello world")
	if _, err := rw.Write(data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if rw.bytesWritten != len(data) {
		t.Errorf("expected bytesWritten=%d, got %d", len(data), rw.bytesWritten)
	}

	var w http.ResponseWriter = rw
	flusher, isFlusher := w.(http.Flusher)
	if !isFlusher {
		t.Fatal("expected responseWriter to implement http.Flusher")
	}
	flusher.Flush()
	if !rec.Flushed {
		t.Error("expected flush to reach the underlying writer")
	}
	if rw.Unwrap() != rec {
		t.Error("expected Unwrap to return the underlying writer")
	}
}

// --- Security Headers Middleware ---

func TestSecurityHeadersMiddleware_SetsHeaders(t *testing.T) {
	s := newTestServer()
	handler := s.securityHeadersMiddleware(http.HandlerFunc(ok))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "same-origin",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("expected %s=%s, got %s", header, value, got)
		}
	}
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "default-src 'self'") {
		t.Error("expected CSP default-src 'self'")
	}
}

// --- Max Body Size Middleware ---

func TestMaxBodySizeMiddleware(t *testing.T) {
	s := newTestServer()

	var readErr error
	handler := s.maxBodySizeMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/test", strings.NewReader("small")))
	if readErr != nil {
		t.Errorf("expected small body to be readable, got %v", readErr)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/test", strings.NewReader(strings.Repeat("x", 100))))
	if readErr == nil {
		t.Error("expected error reading oversized body")
	}
}

// --- CSRF Middleware ---

func TestCSRFMiddleware_GETSetsCookieAndContextToken(t *testing.T) {
	s := newTestServer()

	var token string
	handler := s.csrfMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = handlers.CSRFToken(r)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected _csrf cookie on first GET")
	}
	if token != cookie.Value {
		t.Errorf("expected context token %q to match cookie %q", token, cookie.Value)
	}
	if len(token) != 64 {
		t.Errorf("expected 32-byte hex token, got %d chars", len(token))
	}
}

func TestCSRFMiddleware_GETReusesExistingCookie(t *testing.T) {
	s := newTestServer()

	var token string
	handler := s.csrfMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = handlers.CSRFToken(r)
	}))

	req := httptest.NewRequest("GET", "/login", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: "existing"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if token != "existing" {
		t.Errorf("expected existing token, got %q", token)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("expected no new cookie when one is present")
	}
}

func TestCSRFMiddleware_UnsafeMethods(t *testing.T) {
	s := newTestServer()
	handler := s.csrfMiddleware(http.HandlerFunc(ok))

	form := func(token string) *http.Request {
		req := httptest.NewRequest("POST", "/accounts", strings.NewReader(url.Values{"_csrf": {token}, "action": {"create"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}
	withCookie := func(req *http.Request) *http.Request {
		req.AddCookie(&http.Cookie{Name: csrfCookie, Value: "tok"})
		return req
	}

	headerReq := withCookie(httptest.NewRequest("DELETE", "/accounts", nil))
	headerReq.Header.Set("X-CSRF-Token", "tok")

	cases := map[string]struct {
		req  *http.Request
		want int
	}{
		"no cookie":          {form("tok"), http.StatusForbidden},
		"no token":           {withCookie(httptest.NewRequest("POST", "/logout", nil)), http.StatusForbidden},
		"mismatched field":   {withCookie(form("other")), http.StatusForbidden},
		"matching field":     {withCookie(form("tok")), http.StatusOK},
		"matching header":    {headerReq, http.StatusOK},
		"api route skipped":  {httptest.NewRequest("POST", "/api/anything", nil), http.StatusOK},
		"mcp route skipped":  {httptest.NewRequest("POST", "/mcp", nil), http.StatusOK},
		"preflight allowed":  {httptest.NewRequest("OPTIONS", "/accounts", nil), http.StatusOK},
	}
	for name, tc := range cases {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, tc.req)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", name, tc.want, w.Code)
		}
	}
}

// --- Session guard ---

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]interface{}{"userId": 7, "sub": "a@b.com", "firstName": "Alice", "exp": exp.Unix()})
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func guardServer(t *testing.T, token string) *Server {
	t.Helper()
	sessions := session.NewManager(memory.NewKVStorage(), common.NewSilentLogger())
	if token != "" {
		_ = sessions.Authenticate(context.Background(), models.AuthResponse{Token: token})
	}
	return &Server{logger: common.NewSilentLogger(), app: &app.App{Sessions: sessions}}
}

func TestRequireSession(t *testing.T) {
	cases := map[string]struct {
		token  string
		status int
		called bool
	}{
		"no session": {"", http.StatusFound, false},
		"expired":    {testToken(t, time.Now().Add(-time.Minute)), http.StatusFound, false},
		"valid":      {testToken(t, time.Now().Add(time.Hour)), http.StatusOK, true},
	}
	for name, tc := range cases {
		s := guardServer(t, tc.token)
		called := false
		handler := s.requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard", nil))

		if w.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", name, tc.status, w.Code)
		}
		if called != tc.called {
			t.Errorf("%s: expected handler called=%v", name, tc.called)
		}
		if !tc.called && w.Header().Get("Location") != "/login" {
			t.Errorf("%s: expected redirect to /login, got %s", name, w.Header().Get("Location"))
		}
	}
}
