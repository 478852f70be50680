package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestLoggerLineFormat(t *testing.T) {
	buf := captureLog(t)

	LogInfo("mounted %d beams", 20)
	LogError("resize failed: %s", "boom")
	LogDebug("tick")
	LogPanic("device lost", "frame")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}

	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] (INFO|ERROR|DEBUG|PANIC): .+$`)
	for _, line := range lines {
		if !pattern.MatchString(line) {
			t.Errorf("malformed log line %q", line)
		}
	}
	if !strings.HasSuffix(lines[0], "INFO: mounted 20 beams") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[3], "PANIC: frame: device lost") {
		t.Errorf("line 3 = %q", lines[3])
	}
}

func TestLoggerDisabled(t *testing.T) {
	SetLogOutput(nil)
	// Must not panic without a logger.
	LogInfo("ignored")
	LogError("ignored")
	LogDebug("ignored")
	LogPanic("ignored", "ignored")

	var l *Logger
	l.Info("nil receiver is a no-op")
}

func TestInitLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beamfield.log")
	if err := InitLogger(path); err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	LogInfo("hello")
	CloseLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Beamfield Started", "INFO: hello", "Beamfield Stopped"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}

	LogInfo("after close")
	if err := InitLogger(filepath.Join(t.TempDir(), "missing", "dir.log")); err == nil {
		t.Error("InitLogger() into a missing directory succeeded")
	}
}
