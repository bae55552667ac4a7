package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server != DefaultServer || cfg.PageSize != 15 || cfg.Lookahead != 5 || cfg.LoadMoreDelay != time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("server: https://board.example\nload_more_delay: 250ms\n"), 0o600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server != "https://board.example" {
		t.Errorf("expected server from file, got %q", cfg.Server)
	}
	if cfg.LoadMoreDelay != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.LoadMoreDelay)
	}
	if cfg.PageSize != 15 {
		t.Errorf("expected default page size, got %d", cfg.PageSize)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []string{
		"page_size: 0\n",
		"page_size: -3\n",
		"lookahead: -1\n",
		"lookahead: 0\n",
		"server: localhost:8080\n",
		"load_more_delay: -1s\n",
		"page_size: [1, 2]\n",
	}

	for _, body := range tests {
		path := filepath.Join(t.TempDir(), "config.yaml")
		os.WriteFile(path, []byte(body), 0o600)
		if _, err := Load(path); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestLookaheadMustBePositive(t *testing.T) {
	cfg := Default()
	cfg.Lookahead = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected lookahead 0 to be rejected")
	}
	cfg.Lookahead = 1
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected lookahead 1 to be valid, got %v", err)
	}
}

func TestSaveRoundTripsSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.SetSession("tok", 7, "alice", "user")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %o", info.Mode().Perm())
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != "tok" || got.UserID != 7 || got.Username != "alice" {
		t.Errorf("session not persisted: %+v", got)
	}

	got.SetSession("", 0, "alice", "")
	if got.Token != "" || got.UserID != 0 || got.Username != "alice" {
		t.Errorf("unexpected signed-out state %+v", got)
	}
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "najdeno", "config.yaml") {
		t.Errorf("unexpected path %q", path)
	}
}
