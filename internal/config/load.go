package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names an environment variable pointing at a config file. It is
// consulted when --config is not given.
const EnvConfig = "SCENEGL_CONFIG"

// Load builds the config from defaults, then the first config file found,
// then CLI flags, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFile(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configFile resolves the file to load: --config, then $SCENEGL_CONFIG,
// then the standard locations.
func configFile() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// findConfigFile looks in the working directory, then in ConfigDir.
func findConfigFile() string {
	for _, path := range []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory for the viewer.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "SceneGL")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "SceneGL")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scenegl")
	}
	return filepath.Join(home, ".config", "scenegl")
}

// loadFromFile merges the YAML file at path over cfg. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
