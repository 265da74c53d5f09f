package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvAPIKey overrides the config file's api_key. The name matches what
// users of the original MARS tooling already export in their shells.
const EnvAPIKey = "USDA_MARS_API_KEY"

// Config is the mmnq config file (YAML).
type Config struct {
	APIKey     string `yaml:"api_key"`
	CacheDir   string `yaml:"cache_dir"`
	DailyLimit uint64 `yaml:"daily_limit"`
}

// DefaultConfigPath resolves the conventional config location,
// os.UserConfigDir()/mmnq/config.yaml. Returns "" when no base exists.
func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}
	return filepath.Join(base, "mmnq", "config.yaml")
}

// LoadConfig reads the YAML config at path (or the default location when
// path is empty). A missing file is not an error - the zero Config comes
// back and the environment may still supply the key.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}
	return cfg, nil
}
