package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{DefaultProfile: "work"}
	cfg.Broadcast.Transport = "local"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.Broadcast.Transport != "local" {
		t.Errorf("Transport = %q, want local", loaded.Broadcast.Transport)
	}
	// Unset fields pick up defaults.
	if loaded.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want default sqlite", loaded.Store.Backend)
	}
	if loaded.Broadcast.QueueSize != 256 {
		t.Errorf("QueueSize = %d, want default 256", loaded.Broadcast.QueueSize)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	t.Setenv("LIVECHAT_PROFILE", "ci")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.DefaultProfile != "ci" {
		t.Errorf("DefaultProfile = %q, want ci from env", cfg.DefaultProfile)
	}
	if cfg.Broadcast.Transport != "relay" {
		t.Errorf("Transport = %q, want default relay", cfg.Broadcast.Transport)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{DefaultProfile: "file"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LIVECHAT_PROFILE", "env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultProfile != "env" {
		t.Errorf("DefaultProfile = %q, want env", cfg.DefaultProfile)
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[broadcast]\ntransport = \"carrier-pigeon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for unknown transport")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
