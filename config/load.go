package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative search paths against the config file's directory.
	for i, dir := range cfg.Modules.SearchPaths {
		if !filepath.IsAbs(dir) {
			cfg.Modules.SearchPaths[i] = filepath.Join(baseDir, dir)
		}
	}
	if cfg.Logging.Database != "" && !filepath.IsAbs(cfg.Logging.Database) {
		cfg.Logging.Database = filepath.Join(baseDir, cfg.Logging.Database)
	}
	if cfg.Repl.History != "" && !filepath.IsAbs(cfg.Repl.History) {
		cfg.Repl.History = filepath.Join(baseDir, cfg.Repl.History)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover loads the nearest config, falling back to defaults when no
// config file exists anywhere in the search order.
func Discover(getenv func(string) string) *Config {
	cfg, err := Load("", getenv)
	if err != nil {
		return Defaults()
	}
	return cfg
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > RUCHY_CONFIG env > ./ruchy.yaml > ~/.config/ruchy/ruchy.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("RUCHY_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("RUCHY_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("ruchy.yaml"); err == nil {
		return "ruchy.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "ruchy", "ruchy.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no config file found (tried RUCHY_CONFIG, ruchy.yaml, ~/.config/ruchy/ruchy.yaml)")
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

func validate(cfg *Config) error {
	var errs []string

	if len(cfg.Modules.SearchPaths) == 0 {
		errs = append(errs, "modules.search_paths must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
