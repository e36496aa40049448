package adr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Dir         string `json:"adr_dir"`
	IndexName   string `json:"index_name"`
	Template    string `json:"template,omitempty"`
	Format      string `json:"format"`
	FrontMatter bool   `json:"front_matter"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DirAbs       string `json:"-"` // Absolute path to the ADR directory
	TemplateAbs  string `json:"-"` // Absolute template path, empty if none

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Project  string // Path to the project config candidate if loaded
	Env      string // Path from RADR_CONFIG if loaded
	Explicit string // Path from -c/--config if loaded
}

// IndexPath returns the absolute path of the generated index.
func (c Config) IndexPath() string {
	return filepath.Join(c.DirAbs, c.IndexName)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Dir:       filepath.Join("docs", "adr"),
		IndexName: "index.md",
		Format:    "md",
	}
}

// ConfigEnvVar names a config file loaded above the project candidates.
const ConfigEnvVar = "RADR_CONFIG"

// ProjectConfigNames are the project config candidates, first match wins.
var ProjectConfigNames = []string{
	"radr.toml",
	"radr.yaml",
	"radr.yml",
	"radr.json",
	".radrrc.toml",
	".radrrc.yaml",
	".radrrc.yml",
	".radrrc.json",
}

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/radr/config.json if set, otherwise ~/.config/radr/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "radr", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "radr", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	DirOverride     string            // --adr-dir flag value; empty means no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/radr/config.json or $XDG_CONFIG_HOME/radr/config.json)
// 3. First existing project config candidate in the working directory
// 4. File named by $RADR_CONFIG (must exist)
// 5. Explicit config file via ConfigPath (must exist)
// 6. CLI overrides.
//
// Files are parsed by extension: .json (JSONC allowed), .yaml/.yml and .toml.
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	// Global config is optional
	if globalPath := getGlobalConfigPath(input.Env); globalPath != "" {
		fc, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, fc)
			cfg.Sources.Global = globalPath
		}
	}

	for _, name := range ProjectConfigNames {
		path := filepath.Join(workDir, name)

		fc, loaded, err := loadConfigFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, fc)
			cfg.Sources.Project = path

			break
		}
	}

	if envPath := input.Env[ConfigEnvVar]; envPath != "" {
		path, fc, err := loadRequiredConfig(workDir, envPath)
		if err != nil {
			return Config{}, err
		}

		cfg = mergeConfig(cfg, fc)
		cfg.Sources.Env = path
	}

	if input.ConfigPath != "" {
		path, fc, err := loadRequiredConfig(workDir, input.ConfigPath)
		if err != nil {
			return Config{}, err
		}

		cfg = mergeConfig(cfg, fc)
		cfg.Sources.Explicit = path
	}

	// Apply CLI overrides
	if input.DirOverride != "" {
		cfg.Dir = input.DirOverride
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir
	cfg.DirAbs = absFrom(workDir, cfg.Dir)

	if cfg.Template != "" {
		cfg.TemplateAbs = absFrom(workDir, cfg.Template)
	}

	return cfg, nil
}

func absFrom(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// fileConfig is one config file's content. Nil fields were not set.
type fileConfig struct {
	Dir         *string `json:"adr_dir"      yaml:"adr_dir"      toml:"adr_dir"`
	IndexName   *string `json:"index_name"   yaml:"index_name"   toml:"index_name"`
	Template    *string `json:"template"     yaml:"template"     toml:"template"`
	Format      *string `json:"format"       yaml:"format"       toml:"format"`
	FrontMatter *bool   `json:"front_matter" yaml:"front_matter" toml:"front_matter"`
}

// loadRequiredConfig loads a config file that must exist. Relative paths
// resolve against workDir.
func loadRequiredConfig(workDir, path string) (string, fileConfig, error) {
	abs := absFrom(workDir, path)

	_, statErr := os.Stat(abs)
	if statErr != nil {
		return "", fileConfig{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
	}

	fc, _, err := loadConfigFile(abs, true)
	if err != nil {
		return "", fileConfig{}, err
	}

	return abs, fc, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return a zero config and loaded=false.
func loadConfigFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fileConfig{}, false, nil
		}

		if mustExist {
			return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return fileConfig{}, false, nil
	}

	fc, parseErr := parseConfig(path, data)
	if parseErr != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	if fc.Dir != nil && *fc.Dir == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDirEmpty)
	}

	if fc.IndexName != nil && *fc.IndexName == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrIndexNameEmpty)
	}

	return fc, true, nil
}

// parseConfig decodes data according to the extension of path.
func parseConfig(path string, data []byte) (fileConfig, error) {
	var fc fileConfig

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "json":
		// Standardize JSONC to JSON
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
		}

		err = json.Unmarshal(standardized, &fc)
		if err != nil {
			return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
		}
	case "yaml", "yml":
		err := yaml.Unmarshal(data, &fc)
		if err != nil {
			return fileConfig{}, fmt.Errorf("invalid YAML: %w", err)
		}
	case "toml":
		err := toml.Unmarshal(data, &fc)
		if err != nil {
			return fileConfig{}, fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		return fileConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedConfigFormat, ext)
	}

	return fc, nil
}

func mergeConfig(base Config, overlay fileConfig) Config {
	if overlay.Dir != nil {
		base.Dir = *overlay.Dir
	}

	if overlay.IndexName != nil {
		base.IndexName = *overlay.IndexName
	}

	if overlay.Template != nil {
		base.Template = *overlay.Template
	}

	if overlay.Format != nil {
		base.Format = strings.TrimPrefix(*overlay.Format, ".")
	}

	if overlay.FrontMatter != nil {
		base.FrontMatter = *overlay.FrontMatter
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.Dir == "" {
		return ErrDirEmpty
	}

	if cfg.IndexName == "" {
		return ErrIndexNameEmpty
	}

	if cfg.Format != "md" && cfg.Format != "mdx" {
		return fmt.Errorf("%w: %q", ErrExtensionInvalid, cfg.Format)
	}

	return nil
}
