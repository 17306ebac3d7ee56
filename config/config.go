package config

// Config represents the complete Ruchy project configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	Modules ModulesConfig `yaml:"modules"`
	Repl    ReplConfig    `yaml:"repl"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModulesConfig holds import resolution settings
type ModulesConfig struct {
	SearchPaths StringOrSlice `yaml:"search_paths"` // directories tried in order for imports
	Watch       bool          `yaml:"watch"`        // invalidate cached modules on file change
}

// ReplConfig holds interactive shell settings
type ReplConfig struct {
	History string `yaml:"history"` // history file path (default: ~/.ruchy_history)
}

// LoggingConfig holds script log_* settings
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Database string `yaml:"database"` // session log database path (empty = stderr only)
}

// StringOrSlice supports YAML fields that can be either a string or a slice of strings
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler to handle both string and []string
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var slice []string
	if err := unmarshal(&slice); err != nil {
		return err
	}
	*s = slice
	return nil
}

// Contains checks if the slice contains the given string
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Modules: ModulesConfig{
			SearchPaths: StringOrSlice{".", "./src", "./modules"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
