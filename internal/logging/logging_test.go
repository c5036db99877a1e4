// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/musicreplacer/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"chatty", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "musicreplacer.log")
	logger, err := New(config.LogConfig{Level: "info", File: path, MaxSize: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("override created")
	logger.Debug("not written at info")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "override created") {
		t.Errorf("log file = %q, want the info entry", data)
	}
	if strings.Contains(string(data), "not written") {
		t.Error("debug entry leaked at info level")
	}
}
