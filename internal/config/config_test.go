package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "chat")
}

func TestDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CPUThreshold != 50.0 {
		t.Errorf("threshold default: got %v", cfg.CPUThreshold)
	}
	if cfg.CheckInterval() != time.Second {
		t.Errorf("interval default: got %v", cfg.CheckInterval())
	}
	if cfg.Cooldown() != 600*time.Second {
		t.Errorf("cooldown default: got %v", cfg.Cooldown())
	}
	if cfg.NotifyTimeout() != 10*time.Second {
		t.Errorf("notify timeout default: got %v", cfg.NotifyTimeout())
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("retention default: got %v", cfg.RetentionDays)
	}
}

func TestEnvOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("CPU_THRESHOLD", "80.5")
	t.Setenv("CHECK_INTERVAL", "2.5")
	t.Setenv("COOLDOWN_SECONDS", "120")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CPUThreshold != 80.5 {
		t.Errorf("threshold: got %v", cfg.CPUThreshold)
	}
	if cfg.CheckInterval() != 2500*time.Millisecond {
		t.Errorf("interval: got %v", cfg.CheckInterval())
	}
	if cfg.Cooldown() != 2*time.Minute {
		t.Errorf("cooldown: got %v", cfg.Cooldown())
	}
}

func TestMalformedEnvFallsBackToDefault(t *testing.T) {
	setCredentials(t)
	t.Setenv("CPU_THRESHOLD", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CPUThreshold != 50.0 {
		t.Errorf("expected default threshold, got %v", cfg.CPUThreshold)
	}
}

func TestMissingCredentialsFatal(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when credentials are missing")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error when chat id is missing")
	}
}

func TestFileThenEnvPrecedence(t *testing.T) {
	setCredentials(t)
	t.Setenv("CPU_THRESHOLD", "90")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("cpu_threshold: 65\ncooldown_sec: 300\nlog_dir: /tmp/cpu-sentinel-test\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CPUThreshold != 90 {
		t.Errorf("env must win over file: got %v", cfg.CPUThreshold)
	}
	if cfg.CooldownSec != 300 {
		t.Errorf("file value expected: got %v", cfg.CooldownSec)
	}
	if cfg.LogDir != "/tmp/cpu-sentinel-test" {
		t.Errorf("file value expected: got %v", cfg.LogDir)
	}
}

func TestMissingFileIsError(t *testing.T) {
	setCredentials(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
