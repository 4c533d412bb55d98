package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justestif/go-affect-fusion/internal/config"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		wantDebug bool
		wantJSON  bool
	}{
		{name: "json info", cfg: config.LoggingConfig{Level: "info", Format: "json"}, wantJSON: true},
		{name: "json debug", cfg: config.LoggingConfig{Level: "debug", Format: "json"}, wantDebug: true, wantJSON: true},
		{name: "console", cfg: config.LoggingConfig{Level: "info", Format: "console"}},
		{name: "bad level falls back to info", cfg: config.LoggingConfig{Level: "loud", Format: "json"}, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(tt.cfg, &buf)

			logger.Debug().Msg("debug line")
			if got := strings.Contains(buf.String(), "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}

			buf.Reset()
			logger.Info().Str("k", "v").Msg("info line")
			var m map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &m) == nil
			if isJSON != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v: %s", isJSON, tt.wantJSON, buf.String())
			}
			if isJSON && (m["time"] == nil || m["k"] != "v") {
				t.Errorf("entry = %v", m)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("nope"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fuse_vad_scores", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["path"] != "/fuse_vad_scores" || entry["method"] != "POST" {
		t.Errorf("entry = %v", entry)
	}
	if entry["status"] != float64(400) || entry["bytes"] != float64(4) {
		t.Errorf("status/bytes = %v/%v", entry["status"], entry["bytes"])
	}
}
