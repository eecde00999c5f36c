package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed decoding log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger(t *testing.T) {
	t.Run("writes action, user and details as JSON", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf, Options{Level: LevelInfo, Format: "json"})

		InfoWithUser("user-1", "file_created", map[string]interface{}{"file_id": "abc"})

		entries := decodeLines(t, &buf)
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry["action"] != "file_created" {
			t.Errorf("expected action file_created, got %v", entry["action"])
		}
		if entry["user_id"] != "user-1" {
			t.Errorf("expected user_id user-1, got %v", entry["user_id"])
		}
		details, ok := entry["details"].(map[string]any)
		if !ok || details["file_id"] != "abc" {
			t.Errorf("expected details.file_id abc, got %v", entry["details"])
		}
	})

	t.Run("includes error text", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf, Options{Level: LevelInfo})

		Error("blob_delete_failed", errors.New("boom"), nil)

		entries := decodeLines(t, &buf)
		if len(entries) != 1 || entries[0]["error"] != "boom" {
			t.Fatalf("expected error entry, got %+v", entries)
		}
		if entries[0]["level"] != "ERROR" {
			t.Errorf("expected level ERROR, got %v", entries[0]["level"])
		}
	})

	t.Run("drops entries below configured level", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf, Options{Level: LevelWarn})

		Info("ignored", nil)
		Debug("ignored", nil)
		Warn("kept", nil)

		entries := decodeLines(t, &buf)
		if len(entries) != 1 || entries[0]["action"] != "kept" {
			t.Fatalf("expected only the warn entry, got %+v", entries)
		}
	})
}

func TestRedactSensitiveFields(t *testing.T) {
	payload := map[string]interface{}{"email": "a@b.c", "password": "hunter22"}
	redactSensitiveFields(payload)
	if payload["password"] != "[REDACTED]" {
		t.Errorf("expected password redacted, got %v", payload["password"])
	}
	if payload["email"] != "a@b.c" {
		t.Errorf("expected email untouched, got %v", payload["email"])
	}
}
