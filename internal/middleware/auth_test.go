package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/userdeck/userdeck/internal/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret-at-least-32-bytes-long!!", time.Hour)

	token, err := issuer.Issue("01HTESTUSER")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired := auth.NewTokenIssuer("test-secret-at-least-32-bytes-long!!", -time.Hour)
	expiredToken, err := expired.Issue("01HTESTUSER")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherIssuer := auth.NewTokenIssuer("a-completely-different-secret-value!", time.Hour)
	foreignToken, err := otherIssuer.Issue("01HTESTUSER")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCaller string
	}{
		{
			name:       "valid token passes",
			header:     "Bearer " + token,
			wantStatus: http.StatusOK,
			wantCaller: "01HTESTUSER",
		},
		{
			name:       "missing header rejected",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-bearer scheme rejected",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token rejected",
			header:     "Bearer " + expiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token signed with wrong secret rejected",
			header:     "Bearer " + foreignToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token rejected",
			header:     "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCaller string
			handler := Auth(issuer, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCaller = auth.CallerID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCaller != "" && gotCaller != tt.wantCaller {
				t.Errorf("caller = %q, want %q", gotCaller, tt.wantCaller)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc123", "abc123"},
		{"empty header", "", ""},
		{"bare token without scheme", "abc123", ""},
		{"wrong scheme", "Token abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
