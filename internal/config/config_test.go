package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Training.Mode != nil || cfg.Training.QuestionCount != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigTraining(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[training]
question-count = 15
difficulty = "hard"
sound-speed = "fast"
mode = "word-pair"
bell = false

[training.thresholds]
perfect = 300
good = 600
miss = 1000

[stats]
last = 20
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	tr := cfg.Training
	if *tr.QuestionCount != 15 || *tr.Difficulty != "hard" || *tr.SoundSpeed != "fast" || *tr.Mode != "word-pair" {
		t.Fatalf("unexpected training config %+v", tr)
	}
	if *tr.Bell {
		t.Fatalf("expected bell disabled")
	}
	if *tr.Thresholds.Perfect != 300 || *tr.Thresholds.Good != 600 || *tr.Thresholds.Miss != 1000 {
		t.Fatalf("unexpected thresholds %+v", tr.Thresholds)
	}
	if tr.WordsFile != nil {
		t.Fatalf("unset key should stay nil")
	}
	if *cfg.Stats.Last != 20 || cfg.Stats.CurveWindow != nil {
		t.Fatalf("unexpected stats config %+v", cfg.Stats)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[training]\nwords = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "training.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[training\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestResolvePathsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("TUIEAR_DB_PATH", "")
	t.Setenv("TUIEAR_CONFIG_PATH", "")
	t.Setenv("TUIEAR_WORDS_PATH", "")
	os.Unsetenv("TUIEAR_DB_PATH")
	os.Unsetenv("TUIEAR_CONFIG_PATH")
	os.Unsetenv("TUIEAR_WORDS_PATH")

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := filepath.Join(dir, "data", "tuiear", "tuiear.db"); paths.DB != want {
		t.Fatalf("db path %q, want %q", paths.DB, want)
	}
	if want := filepath.Join(dir, "cfg", "tuiear", "config.toml"); paths.Config != want {
		t.Fatalf("config path %q, want %q", paths.Config, want)
	}
}

func TestResolvePathsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "custom.db")
	t.Setenv("TUIEAR_DB_PATH", db)
	t.Setenv("TUIEAR_CONFIG_PATH", filepath.Join(dir, "c.toml"))

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if paths.DB != db || paths.Config != filepath.Join(dir, "c.toml") {
		t.Fatalf("env override ignored: %+v", paths)
	}
}
