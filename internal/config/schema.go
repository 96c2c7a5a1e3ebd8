package config

import (
	"time"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/hub"
)

// DefaultTokenEnv is the env var holding the API token unless hub.token_env
// names another.
const DefaultTokenEnv = "HUB_TOKEN"

// Config is the top-level hubctl configuration.
type Config struct {
	Hub           HubConfig           `mapstructure:"hub" yaml:"hub"`
	Pipeline      certify.Repos       `mapstructure:"pipeline" yaml:"pipeline"`
	Tasks         TasksConfig         `mapstructure:"tasks" yaml:"tasks"`
	Distributions DistributionsConfig `mapstructure:"distributions" yaml:"distributions"`
	Defaults      DefaultsConfig      `mapstructure:"defaults" yaml:"defaults"`
	Features      FeaturesConfig      `mapstructure:"features" yaml:"features,omitempty"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
}

// HubConfig holds API connection settings.
type HubConfig struct {
	APIBase  string        `mapstructure:"api_base" yaml:"api_base"`
	TokenEnv string        `mapstructure:"token_env" yaml:"token_env"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Token    string        `mapstructure:"-" yaml:"-"` // resolved at runtime, never written
}

// TasksConfig controls task polling.
type TasksConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// DistributionsConfig controls distribution lookups.
type DistributionsConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// DefaultsConfig holds default values for operations.
type DefaultsConfig struct {
	PageSize    int    `mapstructure:"page_size" yaml:"page_size"`
	Sort        string `mapstructure:"sort" yaml:"sort"`
	CacheDir    string `mapstructure:"cache_dir" yaml:"cache_dir"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
}

// FeaturesConfig overrides server-reported feature flags. Unset fields keep
// the server's value.
type FeaturesConfig struct {
	CanUploadSignatures     *bool `mapstructure:"can_upload_signatures" yaml:"can_upload_signatures,omitempty"`
	RequireUploadSignatures *bool `mapstructure:"require_upload_signatures" yaml:"require_upload_signatures,omitempty"`
	CollectionAutoSign      *bool `mapstructure:"collection_auto_sign" yaml:"collection_auto_sign,omitempty"`
	DisplaySignatures       *bool `mapstructure:"display_signatures" yaml:"display_signatures,omitempty"`
}

// LogConfig sets the diagnostic log level.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Apply returns flags with every set override applied.
func (f FeaturesConfig) Apply(flags hub.FeatureFlags) hub.FeatureFlags {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&flags.CanUploadSignatures, f.CanUploadSignatures)
	set(&flags.RequireUploadSignatures, f.RequireUploadSignatures)
	set(&flags.CollectionAutoSign, f.CollectionAutoSign)
	set(&flags.DisplaySignatures, f.DisplaySignatures)
	return flags
}

// IsZero reports whether no override is set.
func (f FeaturesConfig) IsZero() bool {
	return f.CanUploadSignatures == nil && f.RequireUploadSignatures == nil &&
		f.CollectionAutoSign == nil && f.DisplaySignatures == nil
}
