package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestFieldsAndChildLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "settlement"))

	log.Info("date settled",
		Date("date", time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)),
		Decimal("close", decimal.RequireFromString("2045.50")),
		Int("settled", 3),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("kafka down")),
	)

	m := decode(t, &buf)
	want := map[string]interface{}{
		"component": "settlement",
		"date":      "2024-03-04",
		"close":     "2045.5",
		"settled":   float64(3),
		"took":      float64(1500),
		"error":     "kafka down",
		"message":   "date settled",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %#v, want %#v", k, m[k], v)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.WarnLevel)
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered: %s", buf.String())
	}
	log.Warn("shown")
	if decode(t, &buf)["message"] != "shown" {
		t.Fatalf("unexpected %s", buf.String())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatal("expected error")
	}
}
