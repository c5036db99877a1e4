// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/musicreplacer/internal/audiotest"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`data_dir = %q

[store]
backend = "sqlite"

[log]
level = "error"
`, dir)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// Commands share package-level flag state, so these run sequentially.
func TestCommands_OverrideAndRemove(t *testing.T) {
	conf := writeConfig(t)
	song := audiotest.WriteFile(t, filepath.Join(t.TempDir(), "harmony.wav"), audiotest.ToneWAV(100))

	if err := execute("--config", conf, "override", "Harmony", song); err != nil {
		t.Fatalf("override: %v", err)
	}
	if cfg == nil || cfg.Store.Backend != "sqlite" {
		t.Fatalf("config not loaded: %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(cfg.CachePath(), "Harmony.wav")); err != nil {
		t.Errorf("override not cached: %v", err)
	}

	if err := execute("--config", conf, "list"); err != nil {
		t.Errorf("list: %v", err)
	}

	if err := execute("--config", conf, "remove", "Harmony"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.CachePath(), "Harmony.wav")); !os.IsNotExist(err) {
		t.Errorf("override still cached after remove: %v", err)
	}
}

func TestCommands_Failures(t *testing.T) {
	conf := writeConfig(t)
	txt := audiotest.WriteFile(t, filepath.Join(t.TempDir(), "notes.txt"), []byte("x"))

	if err := execute("--config", conf, "override", "Harmony", txt); err == nil {
		t.Error("override with unsupported file succeeded")
	}
	if err := execute("--config", conf, "play", "Nothing Here", "--duration", "10ms"); err == nil {
		t.Error("play without an override succeeded")
	}
	if err := execute("--config", filepath.Join(t.TempDir(), "missing.toml"), "list"); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestPlay_VolumeRange(t *testing.T) {
	if def := playCmd.Flags().Lookup("volume").DefValue; def != "255" {
		t.Errorf("--volume default = %s, want 255", def)
	}

	conf := writeConfig(t)
	t.Cleanup(func() { playVolume = 255 })

	for _, v := range []string{"256", "-1"} {
		err := execute("--config", conf, "play", "Harmony", "--volume="+v, "--duration", "10ms")
		if err == nil || !strings.Contains(err.Error(), "outside 0..255") {
			t.Errorf("play --volume %s error = %v, want a range error", v, err)
		}
	}
}

func TestConsoleHost(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := newConsoleHost(&buf, 42, true)

	if h.ConfiguredVolume() != 42 || !h.LoopFlag() || h.hostVolume() != -1 {
		t.Errorf("host state = %d %v %d", h.ConfiguredVolume(), h.LoopFlag(), h.hostVolume())
	}
	h.SetHostVolume(0)
	if h.hostVolume() != 0 {
		t.Errorf("hostVolume() = %d, want 0", h.hostVolume())
	}
	if h.failed() {
		t.Error("failed() before any message")
	}
	h.PostUserMessage("Couldn't override Harmony")
	if !h.failed() || !strings.Contains(buf.String(), "Couldn't override Harmony") {
		t.Errorf("message not printed: %q", buf.String())
	}
}
