// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/models"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"id":"123"}`},
		{"Unprocessable", http.StatusUnprocessableEntity, `{"error":"bad code"}`},
		{"BadGateway", http.StatusBadGateway, "upstream"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/join/manual", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       any
		expected   string
	}{
		{
			name:       "code info",
			statusCode: http.StatusOK,
			data:       models.CodeInfo{Input: "123456", State: "valid_6_digit", Code: "123456", Display: "123-456"},
			expected:   `{"input":"123456","state":"valid_6_digit","code":"123456","display":"123-456","legacy":false}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}
			if body := strings.TrimSpace(w.Body.String()); body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestAppErrorResponse(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed", apperr.ErrMalformedCode, http.StatusUnprocessableEntity, "MALFORMED_CODE"},
		{"no code", apperr.ErrNoCode, http.StatusUnprocessableEntity, "NO_CODE"},
		{"not found", apperr.ErrJoinNotFound, http.StatusNotFound, "JOIN_NOT_FOUND"},
		{"in progress", apperr.ErrJoinInProgress, http.StatusConflict, "JOIN_IN_PROGRESS"},
		{"network", apperr.ErrNetworkFailure.WithCause(errors.New("dial")), http.StatusBadGateway, "NETWORK_FAILURE"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			AppErrorResponse(w, tc.err)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestAppErrorResponse_Details(t *testing.T) {
	w := httptest.NewRecorder()
	AppErrorResponse(w, apperr.Validation("validation failed", map[string]string{"email": "is required"}))

	var resp struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "VALIDATION" || resp.Details["email"] != "is required" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/join/manual", strings.NewReader(`{"code":"123-456"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	var body models.ManualJoinRequest
	if err := ParseJSONBody(req, &body); err != nil {
		t.Fatalf("ParseJSONBody() error = %v", err)
	}
	if body.Code != "123-456" {
		t.Errorf("Expected code 123-456, got %q", body.Code)
	}

	req = httptest.NewRequest("POST", "/join/manual", strings.NewReader(`{bad`))
	req.Header.Set("Content-Type", "application/json")
	err := ParseJSONBody(req, &body)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected VALIDATION error, got %v", err)
	}
}

func TestParseJSONBodyRejectsNonJSONContentType(t *testing.T) {
	for _, ct := range []string{"", "text/plain", "application/x-www-form-urlencoded", "multipart/form-data; boundary=x"} {
		t.Run(ct, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/join/manual", strings.NewReader(`{"code":"123456"}`))
			if ct != "" {
				req.Header.Set("Content-Type", ct)
			}
			var body models.ManualJoinRequest
			err := ParseJSONBody(req, &body)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Expected VALIDATION error, got %v", err)
			}
			if body.Code != "" {
				t.Errorf("body should not be decoded, got code %q", body.Code)
			}
		})
	}
}

func TestSessionsCookiesAreLaxWhenSecure(t *testing.T) {
	s := NewSessions(testKey, true)
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/join/state", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie %q SameSite = %v, want Lax", c.Name, c.SameSite)
		}
		if !c.Secure {
			t.Errorf("cookie %q should be Secure", c.Name)
		}
	}
}

func TestSessionsIssueAndReuseIdentity(t *testing.T) {
	s := NewSessions(testKey, false)

	var got Identity
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		got = id
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/join/state", nil))
	first := got
	if first.ClientID == "" || first.SessionID == "" || first.ClientID == first.SessionID {
		t.Fatalf("unexpected identity %+v", first)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		switch c.Name {
		case ClientCookie:
			if c.MaxAge <= 0 {
				t.Errorf("client cookie should persist, MaxAge = %d", c.MaxAge)
			}
		case SessionCookie:
			if c.MaxAge != 0 {
				t.Errorf("session cookie should end with the browser, MaxAge = %d", c.MaxAge)
			}
		default:
			t.Errorf("unexpected cookie %q", c.Name)
		}
		if !c.HttpOnly {
			t.Errorf("cookie %q should be HttpOnly", c.Name)
		}
	}

	req := httptest.NewRequest("GET", "/join/state", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got != first {
		t.Errorf("identity changed: %+v -> %+v", first, got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing cookies should not be reissued")
	}
}

func TestSessionsRejectForgedCookie(t *testing.T) {
	s := NewSessions(testKey, false)

	var got Identity
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: "forged"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got.ClientID == "" || got.ClientID == "forged" {
		t.Errorf("forged cookie should be replaced, got %q", got.ClientID)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://metonline.github.io"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/join/manual", nil)
	req.Header.Set("Origin", "https://metonline.github.io")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://metonline.github.io" {
		t.Errorf("Expected allowed origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Expected credentials allowed, got %q", got)
	}

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Unexpected origin allowed: %q", got)
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		expected   string
	}{
		{"X-Forwarded-For single", "1.2.3.4", "", "127.0.0.1:1234", "1.2.3.4"},
		{"X-Forwarded-For chain", "1.2.3.4, 5.6.7.8", "", "127.0.0.1:1234", "1.2.3.4"},
		{"X-Real-IP", "", "9.9.9.9", "127.0.0.1:1234", "9.9.9.9"},
		{"RemoteAddr", "", "", "10.0.0.1:5678", "10.0.0.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				req.Header.Set("X-Real-IP", tc.xri)
			}
			if got := GetClientIP(req); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
