package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/tuner/pkg/pandora"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q): expected %s, got %s", name, want, got)
		}
	}
}

func TestSDKLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	var sdk pandora.Logger = NewSDKLogger(logger)
	sdk.Debugf("calling %s", "auth.partnerLogin")

	out := buf.String()
	if !strings.Contains(out, `"component":"pandora"`) {
		t.Errorf("expected component field, got %s", out)
	}
	if !strings.Contains(out, "calling auth.partnerLogin") {
		t.Errorf("expected formatted message, got %s", out)
	}
}

func TestSDKLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	NewSDKLogger(logger).Debugf("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug output suppressed, got %s", buf.String())
	}
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuner.log")

	logger := New(path, "info")
	logger.Info().Str("k", "v").Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) {
		t.Errorf("expected JSON log line, got %s", data)
	}
}
