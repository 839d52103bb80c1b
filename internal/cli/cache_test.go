package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("cacheDir() returned empty string")
	}

	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestCacheDirStructure(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// Verify the expected structure: $HOME/.cache/trellis
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir() = %q, want XDG override", dir)
	}
}

func TestConfigDirStructure(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", appName)
	if dir != expected {
		t.Errorf("configDir() = %q, want %q", dir, expected)
	}
}

func TestCacheLocation(t *testing.T) {
	if got := cacheLocation(Config{Redis: RedisSection{Addr: "localhost:6379"}}); got != "redis://localhost:6379" {
		t.Errorf("redis location = %q", got)
	}
	if got := cacheLocation(Config{CacheDir: "/var/cache/custom"}); got != "/var/cache/custom" {
		t.Errorf("configured dir location = %q", got)
	}

	// With neither configured it falls back to the XDG directory.
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	if got := cacheLocation(Config{}); got != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("default location = %q", got)
	}
}
