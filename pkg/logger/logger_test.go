package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"logpuzzle/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"disabled", &config.LoggingConfig{Level: "disabled"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewWithWriter(tt.cfg, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithWriter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("NewWithWriter() returned nil logger")
			}
		})
	}
}

func TestNewWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var console bytes.Buffer

	l, err := NewWithWriter(&config.LoggingConfig{Level: "info", File: path}, &console)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	l.WithField("file", "img0.jpg").Info("saved image")
	l.Debug("hidden below level")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"file":"img0.jpg"`) {
		t.Errorf("log file missing field, got %q", data)
	}
	if strings.Contains(string(data), "hidden below level") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(console.String(), "saved image") {
		t.Errorf("console missing message, got %q", console.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithField("field1", "value1").
		WithFields(map[string]interface{}{"field2": 2, "ok": true}).
		WithError(errors.New("boom")).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{"chained fields", `"field1":"value1"`, `"field2":2`, `"ok":true`, `"error":"boom"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output %q missing %s", output, want)
		}
	}

	if l.WithError(nil) != Logger(l) {
		t.Error("WithError(nil) should return the same logger")
	}
	if len(l.fields) != 0 {
		t.Error("WithField must not mutate the parent logger")
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WarnWithFields("retrying", map[string]interface{}{
		"attempt":  2,
		"delay":    time.Second,
		"url":      "http://h/puzzle-a-abcd.jpg",
		"bytes":    int64(12),
		"variants": []string{"a", "b"},
	})

	output := buf.String()
	for _, want := range []string{`"level":"warn"`, `"attempt":2`, `"url":"http://h/puzzle-a-abcd.jpg"`, `"bytes":12`} {
		if !strings.Contains(output, want) {
			t.Errorf("output %q missing %s", output, want)
		}
	}
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "http://h/a.jpg", 200, time.Millisecond)
	LogRequest(tl, "GET", "http://h/b.jpg", 404, time.Millisecond)
	LogRequest(tl, "GET", "http://h/c.jpg", 503, time.Millisecond)
	LogDownload(tl, 0, "http://h/a.jpg", "img0.jpg", 2048, nil)
	LogDownload(tl, 1, "http://h/b.jpg", "img1.jpg", 0, errors.New("not found"))

	if got := len(tl.GetMessagesByLevel("DEBUG")); got != 1 {
		t.Errorf("debug messages = %d, want 1", got)
	}
	if got := len(tl.GetMessagesByLevel("WARN")); got != 1 {
		t.Errorf("warn messages = %d, want 1", got)
	}
	if got := len(tl.GetMessagesByLevel("ERROR")); got != 2 {
		t.Errorf("error messages = %d, want 2", got)
	}

	completed := tl.GetMessagesByLevel("INFO")
	if len(completed) != 1 || completed[0].Fields["size"] != "2.0 kB" {
		t.Errorf("unexpected download log: %+v", completed)
	}
	failed := tl.GetMessagesByLevel("ERROR")[1]
	if failed.Error == nil || failed.Fields["file"] != "img1.jpg" {
		t.Errorf("failed download not captured with error and fields: %+v", failed)
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 {
		t.Error("Clear() left messages behind")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&config.LoggingConfig{Level: "disabled"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
	GetLogger().WithField("key", "value").Info("with field")

	if err := Initialize(&config.LoggingConfig{Level: "nope"}); err == nil {
		t.Error("Initialize() accepted an invalid level")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("a", 1).WithError(errors.New("x")).Error("ignored")
	l.InfoWithFields("ignored", nil)
}
