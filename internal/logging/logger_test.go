package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(nil)

	Info("table fetched", "table", "domestic", "rows", 3)
	Warn("table empty", "table", "city")
	Error("fetch failed", "error", "boom")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 log entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first["table"] != "domestic" {
		t.Errorf("Expected table=domestic, got %v", first["table"])
	}
	if first["rows"] != int64(3) {
		t.Errorf("Expected rows=3, got %v (%T)", first["rows"], first["rows"])
	}
	if entries[2].Level != zap.ErrorLevel {
		t.Errorf("Expected error level, got %v", entries[2].Level)
	}
}

func TestGetLoggerFallback(t *testing.T) {
	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("Expected fallback logger")
	}
}

func TestInit(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		if err := Init(env); err != nil {
			t.Errorf("Init(%q) failed: %v", env, err)
		}
	}
	SetLogger(nil)
}
