package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Graph    GraphConfig    `mapstructure:"graph"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Thinker  ThinkerConfig  `mapstructure:"thinker"`
	Selfplay SelfplayConfig `mapstructure:"selfplay"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GraphConfig holds experience graph storage settings
type GraphConfig struct {
	// DataDir is where the per-player sqlite databases live
	DataDir string `mapstructure:"data_dir"`
	// ClosePolicy selects the sequence-closing rule: "boundary" or "departure"
	ClosePolicy string `mapstructure:"close_policy"`
}

// LLMConfig holds text-generation provider settings
type LLMConfig struct {
	// Model is the Anthropic model id
	Model string `mapstructure:"model"`
	// APIKey may be empty; the provider then reads ANTHROPIC_API_KEY
	APIKey string `mapstructure:"api_key"`
}

// ThinkerConfig holds sequence-selection settings
type ThinkerConfig struct {
	MaxCandidates int     `mapstructure:"max_candidates"`
	MinSamples    int     `mapstructure:"min_samples"`
	Temperature   float64 `mapstructure:"temperature"`
}

// SelfplayConfig holds self-play loop settings
type SelfplayConfig struct {
	Games    int   `mapstructure:"games"`
	MaxTurns int   `mapstructure:"max_turns"`
	Seed     int64 `mapstructure:"seed"`
	// HeroPolicy and MonsterPolicy are "random" or "llm"
	HeroPolicy    string `mapstructure:"hero_policy"`
	MonsterPolicy string `mapstructure:"monster_policy"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("graph.data_dir", ".")
	v.SetDefault("graph.close_policy", "boundary")

	v.SetDefault("llm.model", "claude-haiku-4-5")
	v.SetDefault("llm.api_key", "")

	v.SetDefault("thinker.max_candidates", 40)
	v.SetDefault("thinker.min_samples", 3)
	v.SetDefault("thinker.temperature", 0.3)

	v.SetDefault("selfplay.games", 1)
	v.SetDefault("selfplay.max_turns", 60)
	v.SetDefault("selfplay.seed", 0)
	v.SetDefault("selfplay.hero_policy", "random")
	v.SetDefault("selfplay.monster_policy", "llm")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/poker-monster-agent")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("PMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			// Specific file requested but not found - that's ok, use defaults
		} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// For default locations, only ignore ConfigFileNotFoundError
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		// Re-unmarshal on change
		v.Unmarshal(cfg)
		if onChange != nil {
			onChange()
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Graph.DataDir == "" {
		return fmt.Errorf("graph.data_dir must not be empty")
	}
	if c.Graph.ClosePolicy != "boundary" && c.Graph.ClosePolicy != "departure" {
		return fmt.Errorf("graph.close_policy must be \"boundary\" or \"departure\"")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}

	if c.Thinker.MaxCandidates <= 0 {
		return fmt.Errorf("thinker.max_candidates must be positive")
	}
	if c.Thinker.MinSamples < 1 {
		return fmt.Errorf("thinker.min_samples must be at least 1")
	}
	if c.Thinker.Temperature < 0 || c.Thinker.Temperature > 1 {
		return fmt.Errorf("thinker.temperature must be between 0 and 1")
	}

	if c.Selfplay.Games <= 0 {
		return fmt.Errorf("selfplay.games must be positive")
	}
	if c.Selfplay.MaxTurns <= 0 {
		return fmt.Errorf("selfplay.max_turns must be positive")
	}
	for _, policy := range []string{c.Selfplay.HeroPolicy, c.Selfplay.MonsterPolicy} {
		if policy != "random" && policy != "llm" {
			return fmt.Errorf("player policy must be \"random\" or \"llm\", got %q", policy)
		}
	}

	return nil
}
