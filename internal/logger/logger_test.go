package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf), WithPrefix("streamview"))
	log.Info("turn started", "id", "abc")

	out := buf.String()
	for _, want := range []string{"turn started", "id=abc", "streamview"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf), WithJSON(true))
	log.Warn("slow tick", "ms", 40)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "slow tick" || rec["level"] != "WARN" {
		t.Errorf("record = %v", rec)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantDebug bool
	}{
		{"default is info", nil, false},
		{"debug on", []Option{WithDebug(true)}, true},
		{"debug off", []Option{WithDebug(false)}, false},
		{"explicit level", []Option{WithLevel(slog.LevelDebug)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(append(tt.opts, WithWriter(&buf), WithJSON(true))...)
			log.Debug("hidden?")
			if got := buf.Len() > 0; got != tt.wantDebug {
				t.Errorf("debug written = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "streamview.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	New(WithWriter(f)).Info("hello")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q", data)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing")
}
