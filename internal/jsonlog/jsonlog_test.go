package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPrintInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	l.PrintInfo("starting server", map[string]string{"addr": ":4000"})

	var entry struct {
		Level      string            `json:"level"`
		Message    string            `json:"message"`
		Properties map[string]string `json:"properties"`
		Trace      string            `json:"trace"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("expected level INFO; got %s", entry.Level)
	}
	if entry.Message != "starting server" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Properties["addr"] != ":4000" {
		t.Errorf("expected addr property; got %v", entry.Properties)
	}
	if entry.Trace != "" {
		t.Error("INFO entry must not carry a stack trace")
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("log entry must be newline terminated")
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	l.PrintError(errors.New("database connection failed"), nil)

	var entry struct {
		Level string `json:"level"`
		Trace string `json:"trace"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v", err)
	}
	if entry.Level != "ERROR" {
		t.Errorf("expected level ERROR; got %s", entry.Level)
	}
	if entry.Trace == "" {
		t.Error("ERROR entry must carry a stack trace")
	}
}

func TestMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)
	l.PrintInfo("suppressed", nil)
	if buf.Len() != 0 {
		t.Errorf("entry below minimum level must be discarded; got %q", buf.String())
	}
}
