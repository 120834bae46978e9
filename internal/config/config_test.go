package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Backend != "color" {
		t.Errorf("Backend = %q, want color", cfg.Backend)
	}
	if cfg.MaxLineBytes != 1<<20 {
		t.Errorf("MaxLineBytes = %d, want 1048576", cfg.MaxLineBytes)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SEGMENTD_LOG_LEVEL", "debug")
	t.Setenv("SEGMENTD_BACKEND", "color")
	t.Setenv("SEGMENTD_MAX_LINE_BYTES", "4096")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.MaxLineBytes != 4096 {
		t.Errorf("MaxLineBytes = %d, want 4096", cfg.MaxLineBytes)
	}
}
