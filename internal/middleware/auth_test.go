package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/storefront/internal/token"
)

// mockTokenValidator はテスト用のTokenValidatorモック。
type mockTokenValidator struct {
	validateFunc func(tokenString string) (string, error)
}

func (m *mockTokenValidator) Validate(tokenString string) (string, error) {
	if m.validateFunc != nil {
		return m.validateFunc(tokenString)
	}
	return "user-1", nil
}

// mockAuthMetrics はテスト用のAuthMetricsモック。
type mockAuthMetrics struct {
	causes []string
}

func (m *mockAuthMetrics) RecordAuthFailure(cause string) {
	m.causes = append(m.causes, cause)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v\nraw: %s", err, rec.Body.String())
	}
	return body
}

func TestAuthMiddleware_PassesValidatedRequestWithContext(t *testing.T) {
	validator := &mockTokenValidator{
		validateFunc: func(tokenString string) (string, error) {
			if tokenString != "valid-token" {
				t.Errorf("token = %q, want valid-token", tokenString)
			}
			return "user-42", nil
		},
	}

	var gotUserID, gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		gotToken, _ = BearerTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := NewAuthMiddleware(validator, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-42" {
		t.Errorf("user ID in context = %q, want user-42", gotUserID)
	}
	if gotToken != "valid-token" {
		t.Errorf("bearer token in context = %q, want valid-token", gotToken)
	}
}

func TestAuthMiddleware_RejectionMessages(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		validateErr error
		wantMessage string
		wantCause   string
	}{
		{
			name:        "missing header",
			authHeader:  "",
			wantMessage: "Token not provided.",
			wantCause:   "missing",
		},
		{
			name:        "wrong scheme",
			authHeader:  "Basic dXNlcjpwYXNz",
			wantMessage: "Token not provided.",
			wantCause:   "missing",
		},
		{
			name:        "empty token",
			authHeader:  "Bearer ",
			wantMessage: "Token not provided.",
			wantCause:   "missing",
		},
		{
			name:        "expired token",
			authHeader:  "Bearer some-token",
			validateErr: token.ErrExpired,
			wantMessage: "Token has expired. Please login again.",
			wantCause:   "expired",
		},
		{
			name:        "invalid token",
			authHeader:  "Bearer some-token",
			validateErr: token.ErrInvalid,
			wantMessage: "Token is invalid.",
			wantCause:   "invalid",
		},
		{
			name:        "revoked token",
			authHeader:  "Bearer some-token",
			validateErr: token.ErrRevoked,
			wantMessage: "Token is invalid.",
			wantCause:   "invalid",
		},
		{
			name:        "unexpected validation failure",
			authHeader:  "Bearer some-token",
			validateErr: errors.New("boom"),
			wantMessage: "Unauthenticated. Please provide a valid Bearer token.",
			wantCause:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &mockTokenValidator{
				validateFunc: func(_ string) (string, error) {
					return "", tt.validateErr
				},
			}
			metrics := &mockAuthMetrics{}

			handler := NewAuthMiddleware(validator, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodPost, "/products", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			body := decodeErrorBody(t, rec)
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
			if len(metrics.causes) != 1 || metrics.causes[0] != tt.wantCause {
				t.Errorf("recorded causes = %v, want [%s]", metrics.causes, tt.wantCause)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"standard", "Bearer abc123", "abc123", true},
		{"lowercase scheme", "bearer abc123", "abc123", true},
		{"no header", "", "", false},
		{"no space", "Bearerabc123", "", false},
		{"empty token", "Bearer ", "", false},
		{"whitespace token", "Bearer    ", "", false},
		{"wrong scheme", "Token abc123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			gotToken, gotOK := extractBearerToken(req)
			if gotToken != tt.wantToken || gotOK != tt.wantOK {
				t.Errorf("extractBearerToken = (%q, %v), want (%q, %v)", gotToken, gotOK, tt.wantToken, tt.wantOK)
			}
		})
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := UserIDFromContext(req.Context()); err == nil {
		t.Error("expected error for missing user ID")
	}
}
