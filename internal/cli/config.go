package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds the tool's configuration options.
type Config struct {
	// NBuf overrides the engine's buffer-pool size. 0 keeps the default.
	NBuf int `json:"nbuf,omitempty"`

	// MinDirect overrides the direct-IO threshold in bytes. 0 keeps the
	// default.
	MinDirect int64 `json:"min_direct,omitempty"`

	// LogFile redirects logging from stderr to a file.
	LogFile string `json:"log_file,omitempty"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// ConfigFileName is the project config file name.
const ConfigFileName = ".fitsbuf.json"

// globalConfigPath returns the path to the global config file:
// $XDG_CONFIG_HOME/fitsbuf/config.json, or ~/.config/fitsbuf/config.json.
// Returns empty string if neither can be determined.
func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "fitsbuf", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "fitsbuf", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest
// wins): defaults, global user config, then either the project config in
// workDir or, when configPath is set, that file instead of the project
// config.
func LoadConfig(workDir, configPath string, env map[string]string) (Config, ConfigSources, error) {
	var (
		cfg     Config
		sources ConfigSources
	)

	if global := globalConfigPath(env); global != "" {
		loaded, ok, err := readConfigFile(global)
		if err != nil {
			return Config{}, ConfigSources{}, err
		}

		if ok {
			sources.Global = global
			cfg = mergeConfig(cfg, loaded)
		}
	}

	project := configPath
	explicit := project != ""

	if project == "" {
		project = filepath.Join(workDir, ConfigFileName)
	}

	loaded, ok, err := readConfigFile(project)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	if !ok && explicit {
		return Config{}, ConfigSources{}, fmt.Errorf("config file not found: %s", project)
	}

	if ok {
		sources.Project = project
		cfg = mergeConfig(cfg, loaded)
	}

	return cfg, sources, nil
}

// readConfigFile parses a JSONC config file. Returns ok=false when the
// file does not exist.
func readConfigFile(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	if cfg.NBuf < 0 {
		return Config{}, false, fmt.Errorf("invalid config in %s: nbuf must be >= 0", path)
	}

	if cfg.MinDirect < 0 {
		return Config{}, false, fmt.Errorf("invalid config in %s: min_direct must be >= 0", path)
	}

	return cfg, true, nil
}

// mergeConfig overlays set fields of over onto base.
func mergeConfig(base, over Config) Config {
	if over.NBuf != 0 {
		base.NBuf = over.NBuf
	}

	if over.MinDirect != 0 {
		base.MinDirect = over.MinDirect
	}

	if over.LogFile != "" {
		base.LogFile = over.LogFile
	}

	return base
}
