package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nhle/mailscore/internal/model"
)

func TestNewLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"WARN", false, false},
		{"", false, true},
		{"chatty", false, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := New(model.LogConfig{Level: tt.level}, &buf)

		log.Debug().Msg("debug line")
		log.Info().Msg("info line")

		out := buf.String()
		if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
			t.Errorf("level %q: debug written = %v, want %v", tt.level, got, tt.wantDebug)
		}
		if got := strings.Contains(out, "info line"); got != tt.wantInfo {
			t.Errorf("level %q: info written = %v, want %v", tt.level, got, tt.wantInfo)
		}
	}
}

func TestNewJSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(model.LogConfig{Level: "info"}, &buf)
	log.Info().Str("folder", "INBOX").Msg("fetched")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	if entry["folder"] != "INBOX" || entry["message"] != "fetched" || entry["level"] != "info" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestNewPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(model.LogConfig{Pretty: true}, &buf)
	log.Info().Msg("hello")

	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("pretty output looks like JSON: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output missing message: %s", buf.String())
	}
}
