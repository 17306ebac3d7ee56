package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	want := []string{".", "./src", "./modules"}
	if len(cfg.Modules.SearchPaths) != len(want) {
		t.Fatalf("search paths = %v, want %v", cfg.Modules.SearchPaths, want)
	}
	for i, dir := range want {
		if cfg.Modules.SearchPaths[i] != dir {
			t.Errorf("search_paths[%d] = %q, want %q", i, cfg.Modules.SearchPaths[i], dir)
		}
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Modules.Watch {
		t.Error("watch should default to off")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ruchy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
modules:
  search_paths:
    - lib
    - vendor/ruchy
  watch: true
repl:
  history: .history
logging:
  level: debug
  database: logs/session.db
`)

	cfg, err := Load(path, os.Getenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	base := filepath.Dir(path)
	if cfg.BaseDir != base {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, base)
	}
	if got := cfg.Modules.SearchPaths[0]; got != filepath.Join(base, "lib") {
		t.Errorf("search_paths[0] = %q, relative paths should resolve against the config dir", got)
	}
	if !cfg.Modules.Watch {
		t.Error("watch should be on")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if got := cfg.Logging.Database; got != filepath.Join(base, "logs", "session.db") {
		t.Errorf("database = %q", got)
	}
	if got := cfg.Repl.History; got != filepath.Join(base, ".history") {
		t.Errorf("history = %q", got)
	}
}

func TestLoadScalarSearchPath(t *testing.T) {
	path := writeConfig(t, `
modules:
  search_paths: lib
`)
	cfg, err := Load(path, os.Getenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Modules.SearchPaths) != 1 {
		t.Fatalf("search paths = %v, want one entry", cfg.Modules.SearchPaths)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), os.Getenv); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadInvalidLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: loud
`)
	_, err := Load(path, os.Getenv)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("error %q should mention the log level", err)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "TEST_DIR":
			return "/opt/mods"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple substitution", "path: ${TEST_DIR}", "path: /opt/mods"},
		{"with default (env set)", "path: ${TEST_DIR:-/fallback}", "path: /opt/mods"},
		{"with default (env not set)", "path: ${UNSET_VAR:-/fallback}", "path: /fallback"},
		{"no pattern", "path: plain", "path: plain"},
		{"unset without default", "path: ${UNSET_VAR}", "path: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(interpolateEnv([]byte(tt.input), getenv))
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLoadWithEnvInterpolation(t *testing.T) {
	t.Setenv("RUCHY_TEST_LEVEL", "warn")
	path := writeConfig(t, `
logging:
  level: ${RUCHY_TEST_LEVEL:-info}
`)
	cfg, err := Load(path, os.Getenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Logging.Level)
	}
}

func TestDiscoverFallsBackToDefaults(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg := Discover(func(string) string { return "" })
	if cfg.Logging.Level != "info" {
		t.Errorf("expected defaults, got level %q", cfg.Logging.Level)
	}
}

func TestStringOrSliceContains(t *testing.T) {
	s := StringOrSlice{"a", "b"}
	if !s.Contains("a") || s.Contains("c") {
		t.Error("Contains misbehaved")
	}
}
