package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/vnykmshr/robocmd/internal/testutil"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// lumberjack starts a cleanup goroutine on first write that lives for the
// rest of the process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack.v2.(*Logger).millRun"),
	)
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "robot.log")

	logger, closer, err := New(Config{Level: "DEBUG", Format: FormatJSON, File: path})
	testutil.AssertNoError(t, err)

	logger.Debug("command scheduled", slog.String("command", "drive"))
	testutil.AssertNoError(t, closer.Close())

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)

	var entry map[string]any
	testutil.AssertNoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	testutil.AssertEqual(t, entry["msg"], any("command scheduled"))
	testutil.AssertEqual(t, entry["command"], any("drive"))
	testutil.AssertEqual(t, entry["level"], any("DEBUG"))
}

func TestNewStderr(t *testing.T) {
	logger, closer, err := New(Config{})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, closer.Close())
	testutil.AssertEqual(t, logger.Enabled(context.Background(), slog.LevelInfo), true)
	testutil.AssertEqual(t, logger.Enabled(context.Background(), slog.LevelDebug), false)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	_, _, err = New(Config{Format: "xml"})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, ParseLevel(tt.in), tt.want)
	}
}

func TestNewHandlerText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, Config{Level: LevelWarn, Format: FormatText}))

	logger.Info("hidden")
	logger.Warn("loop overrun", slog.Int("tick", 3))

	out := buf.String()
	testutil.AssertEqual(t, strings.Contains(out, "hidden"), false)
	testutil.AssertEqual(t, strings.Contains(out, "msg=\"loop overrun\" tick=3"), true)
}
