package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	espinerrors "github.com/YuminosukeSato/electrospin/pkg/errors"
)

func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorKindKey, "Internal")

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("Expected leading error to be stored under the error key")
	}
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	testLogger.With(ComponentKey, "surface").Info("fitted", SamplesKey, 15)

	if !testLogger.ContainsField(ComponentKey, "surface") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(SamplesKey, 15.0) {
		t.Error("Samples field not found")
	}
}

func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	if !testLogger.Enabled(ctx, LevelInfo) || !testLogger.Enabled(ctx, LevelError) {
		t.Error("Logger should be enabled for Info and Error")
	}
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")
	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("this should appear") {
		t.Error("Info message should appear when level is Info")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJSONHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(newJSONHandler(&buf, LevelDebug))

	err := espinerrors.NewEmptyDatasetError(0, 1)
	logger.Error("fit failed", err, SamplesKey, 0)

	var entry map[string]interface{}
	if jsonErr := json.Unmarshal(buf.Bytes(), &entry); jsonErr != nil {
		t.Fatalf("invalid JSON output: %v (%s)", jsonErr, buf.String())
	}
	if entry["severity"] != "ERROR" {
		t.Errorf("severity = %v, want ERROR", entry["severity"])
	}
	if entry["message"] != "fit failed" {
		t.Errorf("message = %v, want fit failed", entry["message"])
	}
	if s, _ := entry[StacktraceAttrKey].(string); s == "" {
		t.Error("expected a stacktrace attribute for a cockroachdb error")
	}
}

func TestConsoleLoggerWritesErrorDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, LevelInfo).With(ComponentKey, "cli")

	logger.Debug("hidden")
	logger.Error("sweep failed", espinerrors.NewInvalidSelectionError("H", "H", "axes must differ"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	for _, want := range []string{"sweep failed", "InvalidSelectionError", "component=cli"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q does not contain %q", out, want)
		}
	}
	if !logger.Enabled(context.Background(), LevelWarn) {
		t.Error("warn should be enabled at info level")
	}
}

func TestSetupLogger(t *testing.T) {
	prev := GetLogger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	if err := SetupLogger(&buf, "info", FormatConsole); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	GetLoggerWithName("design").Info("generated", RunsKey, 15)
	if !strings.Contains(buf.String(), "generated") {
		t.Errorf("expected output from provider logger, got %q", buf.String())
	}

	if err := SetupLogger(&buf, "info", "xml"); err == nil {
		t.Error("expected an error for an unknown format")
	}
	if err := SetupLogger(&buf, "loud", FormatJSON); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 5
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				testLogger.Info(fmt.Sprintf("goroutine %d message %d", id, j), "goroutine_id", id)
			}
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	if len(entries) != goroutines*perGoroutine {
		t.Errorf("Expected %d log entries, got %d", goroutines*perGoroutine, len(entries))
	}
}
