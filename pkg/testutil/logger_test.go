package testutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewTestLogger(t *testing.T) {
	// Test with a buffer
	buf := &bytes.Buffer{}
	logger := NewTestLogger(buf)
	if logger == nil {
		t.Fatal("NewTestLogger returned nil")
	}

	logger.Debug("test message", "key", "value")
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("Logger output %q missing attribute", buf.String())
	}

	// Test with nil writer (should use io.Discard)
	if NewTestLogger(nil) == nil {
		t.Error("NewTestLogger returned nil with nil writer")
	}
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	if logger == nil {
		t.Fatal("DiscardLogger returned nil")
	}

	// Test that it doesn't panic
	logger.Info("test message", "key", "value")
	logger.Error("error message", "key", "value")
}

func TestNewCaptureLogger(t *testing.T) {
	logger, buf := NewCaptureLogger()
	logger.Debug("captured", "request_id", "abc")

	out := buf.String()
	if !strings.Contains(out, `"msg":"captured"`) || !strings.Contains(out, `"request_id":"abc"`) {
		t.Errorf("unexpected capture output %q", out)
	}
}
