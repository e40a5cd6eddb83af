package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureFallsBackToInfo(t *testing.T) {
	Configure("not-a-level", "json")
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter")
	}

	Configure("debug", "text")
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter")
	}
}

func TestLogErrorWritesModuleFields(t *testing.T) {
	Configure("info", "json")
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() { Configure("info", "json") })

	LogError("service", "CreatePayout", "lock consignor", map[string]string{"consignor_id": "c-1"}, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["module"] != "service" || entry["funcName"] != "CreatePayout" || entry["msg"] != "boom" {
		t.Fatalf("unexpected log entry %v", entry)
	}
}
