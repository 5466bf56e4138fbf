package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf), WithLevel("debug")); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := WithRunID(context.Background(), "run-1")
	Named("sim").Named("pricing").Info(ctx, "priced",
		String("k", "v"),
		Int("n", 3),
		Float64("f", 1.5),
		Bool("ok", true),
		Duration("took", time.Second),
		Error(errors.New("boom")),
	)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"message": "priced",
		"logger":  "sim.pricing",
		"run_id":  "run-1",
		"k":       "v",
		"n":       float64(3),
		"ok":      true,
		"error":   "boom",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("field %s: expected %v, got %v", k, v, line[k])
		}
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected source to point at the test, got %q", src)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn, got %q", buf.String())
	}
	Get().Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestLoggerFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "castaway.log")
	if err := Init(WithWriter(&buf), WithFile(path)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	Get().Info(context.Background(), "to both")
	if !strings.Contains(buf.String(), "to both") {
		t.Errorf("expected console sink to receive the line")
	}

	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	Get().Info(context.Background(), "after sync")
	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{"to both", "after sync"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestCurrentBeforeInit(t *testing.T) {
	mu.Lock()
	saved := global
	global = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		global = saved
		mu.Unlock()
	}()

	l := Current()
	if l == nil {
		t.Fatal("expected a no-op logger before Init")
	}
	l.Named("x").Info(context.Background(), "dropped")
}

func TestNop(t *testing.T) {
	Nop().Named("x").Error(context.Background(), "dropped", Any("v", []int{1}))
}
