package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Akash-nath29/akron/internal/config"
)

func TestApplyOutputs_WritesRotatingFile(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	path := filepath.Join(t.TempDir(), "logs", "akron.log")
	var console bytes.Buffer
	applyOutputs(&console, config.NewLoader(config.MapSettings{"log.compress": "false"}), path)

	log.Info().Str("table", "users").Msg("Table created")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Table created") {
		t.Fatalf("expected log file to contain message, got %q", string(data))
	}
	if !strings.Contains(console.String(), "Table created") {
		t.Fatalf("expected console to contain message, got %q", console.String())
	}
}

func TestLevelForVerbosity(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		applyLevel(LevelForVerbosity(tt.verbosity))
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Fatalf("verbosity %d: expected %s, got %s", tt.verbosity, tt.want, got)
		}
	}
}

func TestFilePathForDB(t *testing.T) {
	dir := t.TempDir()
	got := FilePathForDB(filepath.Join(dir, "app.db"))
	if got != filepath.Join(dir, DefaultLogFileName) {
		t.Fatalf("expected log next to database, got %q", got)
	}
	if FilePathForDB(":memory:") != DefaultLogFileName {
		t.Fatalf("expected default name for memory database")
	}
}
