package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifevault/lifevault/internal/auth"
)

var testSecret = []byte("middleware-test-secret")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionAuth(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueSessionToken("u1", "u1@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	var gotSession *auth.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := SessionAuth(testSecret, testLogger())(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSession = nil
			req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotSession == nil || gotSession.UserID != "u1" || gotSession.Email != "u1@example.com" {
					t.Errorf("session = %+v, want user u1", gotSession)
				}
			} else if gotSession != nil {
				t.Error("next handler ran for a rejected request")
			}
		})
	}
}

func TestSessionAuthWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueSessionToken("u1", "u1@example.com", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	handler := SessionAuth(testSecret, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler ran with a token signed by another secret")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{"correct secret", "s3cret", "s3cret", http.StatusOK},
		{"wrong secret", "s3cret", "nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		// An unset secret disables the surface instead of opening it.
		{"empty configured secret", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := AdminAuth(tt.secret, testLogger())(next)
			req := httptest.NewRequest(http.MethodPost, "/internal/evaluate", nil)
			if tt.header != "" {
				req.Header.Set("X-Admin-Secret", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr with port", "203.0.113.7:51234", "", "203.0.113.7"},
		{"remote addr without port", "203.0.113.7", "", "203.0.113.7"},
		{"single forwarded hop", "10.0.0.1:80", "198.51.100.4", "198.51.100.4"},
		{"multiple forwarded hops", "10.0.0.1:80", "198.51.100.4,10.0.0.2", "198.51.100.4"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
