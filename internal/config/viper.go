// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Error policies for malformed and incomplete records.
const (
	PolicyFail = "fail"
	PolicySkip = "skip"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter         string `mapstructure:"delimiter" yaml:"delimiter"`
		TrailingDelimiter bool   `mapstructure:"trailing_delimiter" yaml:"trailing_delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Output struct {
		// Schema is "full", "legacy" or empty for the format's own schema.
		Schema     string   `mapstructure:"schema" yaml:"schema"`
		Columns    []string `mapstructure:"columns" yaml:"columns"`
		Reverse    bool     `mapstructure:"reverse" yaml:"reverse"`
		DateLayout string   `mapstructure:"date_layout" yaml:"date_layout"`
	} `mapstructure:"output" yaml:"output"`

	Pipeline struct {
		OnMalformed  string `mapstructure:"on_malformed" yaml:"on_malformed"`
		OnIncomplete string `mapstructure:"on_incomplete" yaml:"on_incomplete"`
	} `mapstructure:"pipeline" yaml:"pipeline"`

	Rules struct {
		File      string `mapstructure:"file" yaml:"file"`
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"rules" yaml:"rules"`

	Formats struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"formats" yaml:"formats"`

	Defaults struct {
		Payee string `mapstructure:"payee" yaml:"payee"`
	} `mapstructure:"defaults" yaml:"defaults"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		Attempts       uint   `mapstructure:"attempts" yaml:"attempts"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// When configFile is empty the standard locations are searched.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-csv")
		v.AddConfigPath(".statement-csv")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("STMT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key is also accepted without prefix
	if err := v.BindEnv("ai.api_key", "STMT_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration obtained from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ";")
	v.SetDefault("csv.trailing_delimiter", false)

	v.SetDefault("output.schema", "")
	v.SetDefault("output.columns", []string{})
	v.SetDefault("output.reverse", true)
	v.SetDefault("output.date_layout", "2006-01-02")

	v.SetDefault("pipeline.on_malformed", PolicyFail)
	v.SetDefault("pipeline.on_incomplete", PolicySkip)

	v.SetDefault("rules.file", "")
	v.SetDefault("rules.delimiter", ",")

	v.SetDefault("formats.file", "")

	v.SetDefault("defaults.payee", "")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.attempts", 3)
	v.SetDefault("ai.api_key", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}

	if len([]rune(config.Rules.Delimiter)) != 1 {
		return fmt.Errorf("rules delimiter must be a single character, got: %q", config.Rules.Delimiter)
	}

	switch config.Output.Schema {
	case "", "full", "legacy":
	default:
		return fmt.Errorf("output.schema must be 'full' or 'legacy', got: %s", config.Output.Schema)
	}

	if config.Output.DateLayout == "" {
		return fmt.Errorf("output.date_layout must not be empty")
	}

	if err := validatePolicy("pipeline.on_malformed", config.Pipeline.OnMalformed); err != nil {
		return err
	}
	if err := validatePolicy("pipeline.on_incomplete", config.Pipeline.OnIncomplete); err != nil {
		return err
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
		if config.AI.Attempts < 1 {
			return fmt.Errorf("ai.attempts must be at least 1")
		}
	}

	return nil
}

func validatePolicy(key, value string) error {
	if value != PolicyFail && value != PolicySkip {
		return fmt.Errorf("%s must be '%s' or '%s', got: %s", key, PolicyFail, PolicySkip, value)
	}
	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config, logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		logger = logrus.New()
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
