package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "hubctl", "config.yml")
}

// Path returns the config file in use: HUBCTL_CONFIG if set, else DefaultPath.
func Path() string {
	if p := os.Getenv("HUBCTL_CONFIG"); p != "" {
		return ExpandHome(p)
	}
	return DefaultPath()
}

// Load reads the config from Path (or env). Returns defaults if no file
// exists yet; the init command creates it.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config from configPath, layering HUBCTL_* env vars and
// an optional .env file in the working directory on top.
func LoadFile(configPath string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HUBCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Resolve token from env (never stored in file).
	tokenEnv := cfg.Hub.TokenEnv
	if tokenEnv == "" {
		tokenEnv = DefaultTokenEnv
	}
	cfg.Hub.Token = os.Getenv(tokenEnv)
	if cfg.Hub.Token == "" {
		cfg.Hub.Token = os.Getenv("HUBCTL_TOKEN")
	}

	cfg.Defaults.CacheDir = ExpandHome(cfg.Defaults.CacheDir)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hub.api_base", "http://localhost:5001/api/galaxy")
	v.SetDefault("hub.token_env", DefaultTokenEnv)
	v.SetDefault("hub.timeout", 30*time.Second)
	v.SetDefault("pipeline.staging_repo", "staging")
	v.SetDefault("pipeline.published_repo", "published")
	v.SetDefault("pipeline.rejected_repo", "rejected")
	v.SetDefault("tasks.poll_interval", time.Second)
	v.SetDefault("distributions.page_size", 999)
	v.SetDefault("defaults.page_size", 10)
	v.SetDefault("defaults.sort", "-pulp_created")
	v.SetDefault("defaults.cache_dir", defaultCacheDir())
	v.SetDefault("defaults.concurrency", 4)
	v.SetDefault("log.level", "warn")
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	return SaveFile(cfg, Path())
}

// SaveFile writes the config to path, creating parent directories.
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func defaultCacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "hubctl")
}
