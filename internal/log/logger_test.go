package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, JSON: true, Output: &buf}, ComponentDaemon)
	l.Info("started", FieldFiles, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decoding log line: %v (%q)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentDaemon {
		t.Errorf("component = %v", rec[FieldComponent])
	}
	if rec["msg"] != "started" {
		t.Errorf("msg = %v", rec["msg"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf}, ComponentDaemon).WithComponent(ComponentHTTP)
	if l.Component() != ComponentHTTP {
		t.Fatalf("Component() = %q", l.Component())
	}
	l.Warn("slow")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("log line missing component: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf}, ComponentHTTP)
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if !strings.Contains(buf.String(), "status=418") || !strings.Contains(buf.String(), "path=/v1/status") {
		t.Fatalf("unexpected log line: %q", buf.String())
	}
}
