package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), dirName, fileName)
	t.Setenv(PathEnv, p)
	return p
}

func TestConfig_Path(t *testing.T) {
	t.Run("honours override", func(t *testing.T) {
		p := useTempConfig(t)
		got, err := Path()
		if err != nil {
			t.Fatalf("Path() returned error: %v", err)
		}
		if got != p {
			t.Errorf("expected %s, got %s", p, got)
		}
	})

	t.Run("defaults to user config dir", func(t *testing.T) {
		t.Setenv(PathEnv, "")
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			t.Skipf("no user config dir: %v", err)
		}
		got, err := Path()
		if err != nil {
			t.Fatalf("Path() returned error: %v", err)
		}
		if got != filepath.Join(userConfigDir, dirName, fileName) {
			t.Errorf("unexpected path %s", got)
		}
	})
}

func TestConfig_Load(t *testing.T) {
	t.Run("returns default config when file does not exist", func(t *testing.T) {
		useTempConfig(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL {
			t.Errorf("expected ServerURL %s, got %s", DefaultURL, cfg.ServerURL)
		}
		if cfg.HasToken() {
			t.Error("expected no token")
		}
	})

	t.Run("fills default server URL when empty", func(t *testing.T) {
		p := useTempConfig(t)
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			t.Fatalf("failed creating dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(`{"token":"abc"}`), 0600); err != nil {
			t.Fatalf("failed writing config: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL || cfg.Token != "abc" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("returns error for invalid JSON", func(t *testing.T) {
		p := useTempConfig(t)
		_ = os.MkdirAll(filepath.Dir(p), 0700)
		if err := os.WriteFile(p, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed writing config: %v", err)
		}

		if _, err := Load(); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestConfig_SaveAndClear(t *testing.T) {
	p := useTempConfig(t)

	if err := Save(&Config{ServerURL: "https://share.example.com", Token: "tok"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Errorf("expected perms %o, got %o", filePerms, info.Mode().Perm())
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != "https://share.example.com" || cfg.Token != "tok" {
		t.Errorf("unexpected round trip: %+v", cfg)
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("expected config removed, got %v", err)
	}
	if err := Clear(); err != nil {
		t.Errorf("second Clear() should succeed, got %v", err)
	}
}
