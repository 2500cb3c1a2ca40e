package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "swapsies.log")

	log, err := New(&Config{LogFile: logFile, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Info("quote fetched", zap.String("mint", "abc"))
	if err := Sync(log); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "quote fetched") {
		t.Errorf("Log file missing entry:\n%s", data)
	}
	if !strings.Contains(string(data), `"mint":"abc"`) {
		t.Errorf("Log file missing structured field:\n%s", data)
	}
}

func TestNewTUIWritesToRing(t *testing.T) {
	tempDir := t.TempDir()
	logFile := filepath.Join(tempDir, "swapsies.log")
	ring := NewRing(16)

	log, err := NewTUI(&Config{LogFile: logFile, MaxSize: 1, MaxBackups: 1, MaxAge: 1}, ring)
	if err != nil {
		t.Fatalf("Failed to create TUI logger: %v", err)
	}

	log.Info("preview computed")
	log.Warn("price stale")
	_ = Sync(log)

	lines := ring.Lines(0)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 ring lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "preview computed") {
		t.Errorf("First ring line missing message: %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN]") {
		t.Errorf("Second ring line missing level: %q", lines[1])
	}

	// The file stream must carry the same entries as JSON.
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "preview computed") {
		t.Errorf("Log file missing entry:\n%s", data)
	}
}

func TestDebugLevelGatedByDevelopment(t *testing.T) {
	tempDir := t.TempDir()
	ring := NewRing(16)

	log, err := NewTUI(&Config{
		LogFile: filepath.Join(tempDir, "a.log"),
		MaxSize: 1, MaxBackups: 1, MaxAge: 1,
	}, ring)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	log.Debug("hidden")
	if len(ring.Lines(0)) != 0 {
		t.Errorf("Debug entry must be suppressed outside development mode: %v", ring.Lines(0))
	}

	devRing := NewRing(16)
	devLog, err := NewTUI(&Config{
		LogFile: filepath.Join(tempDir, "b.log"),
		MaxSize: 1, MaxBackups: 1, MaxAge: 1,
		Development: true,
	}, devRing)
	if err != nil {
		t.Fatalf("Failed to create dev logger: %v", err)
	}
	devLog.Debug("visible")
	if len(devRing.Lines(0)) != 1 {
		t.Errorf("Debug entry must appear in development mode: %v", devRing.Lines(0))
	}
}
