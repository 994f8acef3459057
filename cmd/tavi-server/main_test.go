package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tavi/tavi/internal/config"
	"github.com/tavi/tavi/internal/domain/documents"
	"github.com/tavi/tavi/internal/platform/db"
	"github.com/tavi/tavi/internal/platform/middleware"
)

func TestParseKind(t *testing.T) {
	for _, k := range documents.Kinds {
		got, err := parseKind(string(k))
		if err != nil {
			t.Errorf("parseKind(%q) unexpected error: %v", k, err)
		}
		if got != k {
			t.Errorf("parseKind(%q) = %q", k, got)
		}
	}

	if _, err := parseKind("letter"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		l := newLogger(env)
		if l.GetLevel() != zerolog.TraceLevel {
			t.Errorf("newLogger(%q) level = %s, want trace (no filtering)", env, l.GetLevel())
		}
	}
}

func TestKindNames(t *testing.T) {
	got := strings.Join(kindNames(), ",")
	if got != "ambulatory,procedural,consent,blood-tests" {
		t.Errorf("kindNames() = %s", got)
	}
}

func TestGenerateCmd_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"letter", "--patient", "6f1c2b7e-9a55-4d8e-bf51-2d2b1a0f9c11"}},
		{"bad patient id", []string{"consent", "--patient", "42"}},
		{"missing patient", []string{"consent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := generateCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			if err := cmd.Execute(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteStatus(t *testing.T) {
	applied := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	writeStatus(&buf, []db.MigrationStatus{
		{Version: 1, Name: "001_patient.sql", Applied: true, AppliedAt: &applied},
		{Version: 2, Name: "002_tavi_procedure.sql"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "applied") || !strings.Contains(lines[2], "2024-05-02 09:30:00") {
		t.Errorf("unexpected applied row %q", lines[2])
	}
	if !strings.Contains(lines[3], "pending") {
		t.Errorf("unexpected pending row %q", lines[3])
	}
}

func TestNewEcho_Health(t *testing.T) {
	cfg := &config.Config{BodyLimit: "1M", CORSOrigins: []string{"http://localhost:3000"}}
	e := newEcho(cfg, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}
