package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockHTTPMetrics はテスト用のHTTPMetricsモック。
type mockHTTPMetrics struct {
	statuses  []int
	durations []time.Duration
}

func (m *mockHTTPMetrics) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func (m *mockHTTPMetrics) RecordRequestDuration(duration time.Duration) {
	m.durations = append(m.durations, duration)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func logEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v\nraw: %s", err, buf.String())
	}
	return entry
}

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := NewLoggingMiddleware(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := logEntry(t, &buf)
	if entry["msg"] != "http_request" {
		t.Errorf("msg = %q, want http_request", entry["msg"])
	}
	if entry["method"] != "POST" {
		t.Errorf("method = %q, want POST", entry["method"])
	}
	if entry["path"] != "/products" {
		t.Errorf("path = %q, want /products", entry["path"])
	}
	if entry["status"] != float64(201) {
		t.Errorf("status = %v, want 201", entry["status"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("expected duration_ms field")
	}
	if _, ok := entry["remote_addr"]; !ok {
		t.Error("expected remote_addr field")
	}
}

func TestLoggingMiddleware_DefaultsTo200WithoutWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := NewLoggingMiddleware(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := logEntry(t, &buf)
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
}

func TestLoggingMiddleware_LevelEscalation(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := newTestLogger(&buf)

		handler := NewLoggingMiddleware(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		entry := logEntry(t, &buf)
		if entry["level"] != tt.wantLevel {
			t.Errorf("status %d: level = %q, want %q", tt.status, entry["level"], tt.wantLevel)
		}
	}
}

func TestLoggingMiddleware_IncludesUserIDWhenAuthenticated(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := NewLoggingMiddleware(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-7"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := logEntry(t, &buf)
	if entry["user_id"] != "user-7" {
		t.Errorf("user_id = %v, want user-7", entry["user_id"])
	}
}

func TestLoggingMiddleware_RecordsMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	metrics := &mockHTTPMetrics{}

	handler := NewLoggingMiddleware(logger, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products/999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if len(metrics.statuses) != 1 || metrics.statuses[0] != http.StatusNotFound {
		t.Errorf("recorded statuses = %v, want [404]", metrics.statuses)
	}
	if len(metrics.durations) != 1 {
		t.Errorf("recorded durations = %v, want one entry", metrics.durations)
	}
}
