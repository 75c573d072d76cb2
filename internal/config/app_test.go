package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	return home
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(NewViper(), LoadOptions{EnvFile: filepath.Join(home, "missing.env")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HistoryBackend != "memory" || cfg.HistoryPath != "" {
		t.Errorf("Unexpected history defaults: %q %q", cfg.HistoryBackend, cfg.HistoryPath)
	}
	if !cfg.SkipUnavailable || !cfg.ContinueOnError || !cfg.MergeFallback || !cfg.Thumbnails {
		t.Errorf("Unexpected behavior defaults: %+v", cfg)
	}
	if cfg.ListTimeout != time.Minute {
		t.Errorf("Expected list timeout 1m, got %s", cfg.ListTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %q", cfg.LogLevel)
	}
	if cfg.DownloadDir != filepath.Join(home, "Downloads") {
		t.Errorf("Unexpected download dir %q", cfg.DownloadDir)
	}
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	home := isolate(t)
	cfgFile := filepath.Join(home, "config.yaml")
	content := strings.Join([]string{
		"download_dir: /media/videos",
		"ffmpeg_path: /opt/ffmpeg/bin/ffmpeg",
		"history:",
		"  backend: sqlite",
		"continue_on_error: false",
		"list_timeout: 15s",
	}, "\n")
	if err := os.WriteFile(cfgFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YTMUX_LOG_LEVEL", "debug")
	t.Setenv("YTMUX_MERGE_FALLBACK", "false")

	cfg, err := Load(NewViper(), LoadOptions{ConfigFile: cfgFile, EnvFile: filepath.Join(home, "none.env")})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DownloadDir != "/media/videos" || cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("Config file values not applied: %+v", cfg)
	}
	if cfg.HistoryBackend != "sqlite" || filepath.Base(cfg.HistoryPath) != "history.db" {
		t.Errorf("Unexpected history settings: %q %q", cfg.HistoryBackend, cfg.HistoryPath)
	}
	if cfg.ContinueOnError || cfg.MergeFallback || cfg.ListTimeout != 15*time.Second {
		t.Errorf("Unexpected behavior flags: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Environment should override log level, got %q", cfg.LogLevel)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	unsetAfter(t, "YTMUX_HISTORY_BACKEND", "YTMUX_HISTORY_PATH")

	envFile := filepath.Join(home, ".env")
	content := "YTMUX_HISTORY_BACKEND=text\nYTMUX_HISTORY_PATH=" + filepath.Join(home, "h.txt") + "\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(NewViper(), LoadOptions{EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HistoryBackend != "text" || cfg.HistoryPath != filepath.Join(home, "h.txt") {
		t.Errorf("Unexpected history settings from .env: %q %q", cfg.HistoryBackend, cfg.HistoryPath)
	}
}

func TestLoad_Invalid(t *testing.T) {
	home := isolate(t)
	t.Setenv("YTMUX_HISTORY_BACKEND", "postgres")

	if _, err := Load(NewViper(), LoadOptions{EnvFile: filepath.Join(home, "none.env")}); err == nil {
		t.Error("Expected error for unknown history backend")
	}

	t.Setenv("YTMUX_HISTORY_BACKEND", "memory")
	t.Setenv("YTMUX_LIST_TIMEOUT", "0s")
	if _, err := Load(NewViper(), LoadOptions{EnvFile: filepath.Join(home, "none.env")}); err == nil {
		t.Error("Expected error for a zero list timeout")
	}
	t.Setenv("YTMUX_LIST_TIMEOUT", "1m")

	if _, err := Load(NewViper(), LoadOptions{ConfigFile: filepath.Join(home, "missing.yaml"), EnvFile: filepath.Join(home, "none.env")}); err == nil {
		t.Error("Expected error for explicit missing config file")
	}
}
