package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Defaults for every recognized option. Flags and the optional config
// file both override these.
const (
	DefaultLcovPath       = "build/coverage/lcov.info"
	DefaultRepoRoot       = "."
	DefaultContextLines   = 40
	DefaultMaxOutputBytes = 20000
	DefaultMaxFiles       = 10
	DefaultPromptPath     = "prompts/TESTS.md"
	DefaultLogLevel       = "info"
)

// Config holds the settings for one conversion run.
type Config struct {
	// LcovPath is the lcov report to convert.
	LcovPath string `mapstructure:"lcov_path"`

	// RepoRoot is joined with each record's file path to locate source
	// text for snippets.
	RepoRoot string `mapstructure:"repo_root"`

	// ContextLines is the window of source lines included before and
	// after each target span.
	ContextLines int `mapstructure:"context_lines"`

	// MaxOutputBytes truncates the serialized JSON after encoding. It is
	// a preview cut, not a semantic limit on payload content.
	MaxOutputBytes int `mapstructure:"max_output_bytes"`

	// MaxFiles caps how many per-file payloads are emitted, keeping the
	// first N in parse order.
	MaxFiles int `mapstructure:"max_files"`

	// PromptPath is the human-readable header printed before the JSON.
	PromptPath string `mapstructure:"prompt_path"`

	// Raw suppresses the prompt header and emits only the JSON.
	Raw bool `mapstructure:"raw"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads a configuration file from the "configs" directory into a
// struct. configName is the base name without extension. The multi-path
// lookup makes the same file visible when tests run inside a package
// directory.
func Load(configName string, result interface{}) error {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(result); err != nil {
		return fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	return nil
}

// LoadConfig returns the run configuration: defaults, overridden by an
// optional configs/config.yaml, overridden by COV2AI_* environment
// variables. A missing config file is not an error.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetDefault("lcov_path", DefaultLcovPath)
	v.SetDefault("repo_root", DefaultRepoRoot)
	v.SetDefault("context_lines", DefaultContextLines)
	v.SetDefault("max_output_bytes", DefaultMaxOutputBytes)
	v.SetDefault("max_files", DefaultMaxFiles)
	v.SetDefault("prompt_path", DefaultPromptPath)
	v.SetDefault("raw", false)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix("COV2AI")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	return &cfg, nil
}
