package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// TestLogger_IncludesCallFields verifies dispatch fields are present in log output.
func TestLogger_IncludesCallFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	meta := CallMeta{
		Database:    "production",
		Model:       "res.partner",
		Operation:   "search_read",
		Fingerprint: "9f2c41aa03de",
	}

	callLogger := logger.WithCall(meta)
	callLogger.Info(context.Background(), "test message")

	output := buf.String()

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, output)
	}

	if v, ok := logEntry["odoo.model"].(string); !ok || v != "res.partner" {
		t.Errorf("expected odoo.model='res.partner', got %v", logEntry["odoo.model"])
	}
	if v, ok := logEntry["odoo.operation"].(string); !ok || v != "search_read" {
		t.Errorf("expected odoo.operation='search_read', got %v", logEntry["odoo.operation"])
	}
	if v, ok := logEntry["odoo.database"].(string); !ok || v != "production" {
		t.Errorf("expected odoo.database='production', got %v", logEntry["odoo.database"])
	}
	if v, ok := logEntry["caller.fingerprint"].(string); !ok || v != "9f2c41aa03de" {
		t.Errorf("expected caller.fingerprint='9f2c41aa03de', got %v", logEntry["caller.fingerprint"])
	}
}

// TestLogger_IncludesDuration verifies duration_ms field is present.
func TestLogger_IncludesDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	meta := CallMeta{Model: "res.partner", Operation: "read"}
	callLogger := logger.WithCall(meta)

	callLogger.Info(context.Background(), "test message",
		Field{Key: "duration_ms", Value: 50.5},
	)

	output := buf.String()

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["duration_ms"].(float64); !ok || v != 50.5 {
		t.Errorf("expected duration_ms=50.5, got %v", logEntry["duration_ms"])
	}
}

// TestLogger_ErrorLevel verifies error log level and error field.
func TestLogger_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	meta := CallMeta{Model: "res.partner", Operation: "create"}
	callLogger := logger.WithCall(meta)

	callLogger.Error(context.Background(), "call failed",
		Field{Key: "error", Value: "connection timeout"},
	)

	output := buf.String()

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["level"].(string); !ok || v != "error" {
		t.Errorf("expected level='error', got %v", logEntry["level"])
	}
	if v, ok := logEntry["error"].(string); !ok || v != "connection timeout" {
		t.Errorf("expected error='connection timeout', got %v", logEntry["error"])
	}
}

// TestLogger_RedactsCredentialFields verifies credential-bearing fields never
// reach the sink in the clear.
func TestLogger_RedactsCredentialFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	for _, key := range RedactedFields {
		buf.Reset()
		logger.Info(context.Background(), "credentials received",
			Field{Key: key, Value: "hunter2-secret-value"},
		)

		output := buf.String()
		if strings.Contains(output, "hunter2-secret-value") {
			t.Errorf("field %q leaked its raw value", key)
		}
		if !strings.Contains(output, "[REDACTED]") {
			t.Errorf("field %q missing the redaction marker: %s", key, output)
		}
	}
}

// TestLogger_NonSecretFieldsPassThrough verifies ordinary fields are logged as-is.
func TestLogger_NonSecretFieldsPassThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "listing models",
		Field{Key: "model_count", Value: 4},
	)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}
	if v, ok := logEntry["model_count"].(float64); !ok || v != 4 {
		t.Errorf("expected model_count=4, got %v", logEntry["model_count"])
	}
}

// TestLogger_LevelFiltering verifies log level filtering.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Info(context.Background(), "info message")

	if output := buf.String(); strings.Contains(output, "info message") {
		t.Error("info message should be filtered when level is warn")
	}

	logger.Warn(context.Background(), "warn message")

	if output := buf.String(); !strings.Contains(output, "warn message") {
		t.Error("warn message should pass through when level is warn")
	}
}

// TestLogger_DebugLevel verifies debug level output.
func TestLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Debug(context.Background(), "debug message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}
	if v, ok := logEntry["level"].(string); !ok || v != "debug" {
		t.Errorf("expected level='debug', got %v", logEntry["level"])
	}
}

// TestLogger_UnknownLevelDefaultsToInfo verifies the level fallback.
func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("loud", &buf)

	logger.Debug(context.Background(), "debug message")
	if buf.Len() != 0 {
		t.Error("debug message should be filtered at the fallback info level")
	}

	logger.Info(context.Background(), "info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Error("info message should pass at the fallback info level")
	}
}

// TestLogger_EmptyDatabaseOmitted verifies optional call fields are omitted.
func TestLogger_EmptyDatabaseOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	callLogger := logger.WithCall(CallMeta{Model: "res.users", Operation: "search"})
	callLogger.Info(context.Background(), "test")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}
	if _, ok := logEntry["odoo.database"]; ok {
		t.Error("expected no odoo.database field when empty")
	}
	if _, ok := logEntry["caller.fingerprint"]; ok {
		t.Error("expected no caller.fingerprint field when empty")
	}
}
