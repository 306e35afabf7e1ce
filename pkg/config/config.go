package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete tulip configuration.
//
// It captures:
//   - Logging configuration
//   - Content store selection and type-specific settings
//   - Metadata store selection and type-specific settings
//   - Sidecar descriptor format and digests
//   - Metrics output
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (TULIP_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each backend defines its own Config type. StoreConfig carries one
// untyped section per backend and only the section matching Type is
// decoded (see CreateStore).
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Content is the store holding user bytes and directories
	Content StoreConfig `mapstructure:"content" yaml:"content" json:"content"`

	// Metadata is the store holding sidecar descriptors
	Metadata StoreConfig `mapstructure:"metadata" yaml:"metadata" json:"metadata"`

	// Sidecar controls how descriptors are generated and encoded
	Sidecar SidecarConfig `mapstructure:"sidecar" yaml:"sidecar" json:"sidecar"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" json:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" json:"output" validate:"required"`
}

// StoreConfig selects a backend and holds its settings.
//
// The Type field determines which implementation is used.
// Only the corresponding type-specific section is read.
type StoreConfig struct {
	// Type specifies which store implementation to use
	// Valid values: filesystem, memory, s3, badger, archive
	Type string `mapstructure:"type" yaml:"type" json:"type" validate:"required,oneof=filesystem memory s3 badger archive"`

	// Filesystem contains local disk settings (see pkg/store/fs.Config)
	Filesystem map[string]any `mapstructure:"filesystem" yaml:"filesystem,omitempty" json:"filesystem,omitempty"`

	// Memory contains in-memory settings (currently none)
	Memory map[string]any `mapstructure:"memory" yaml:"memory,omitempty" json:"memory,omitempty"`

	// S3 contains S3 settings (see s3Options)
	S3 map[string]any `mapstructure:"s3" yaml:"s3,omitempty" json:"s3,omitempty"`

	// Badger contains BadgerDB settings (see pkg/store/badger.Config)
	Badger map[string]any `mapstructure:"badger" yaml:"badger,omitempty" json:"badger,omitempty"`

	// Archive contains tar archive settings (see pkg/store/archive.Config)
	Archive map[string]any `mapstructure:"archive" yaml:"archive,omitempty" json:"archive,omitempty"`
}

// SidecarConfig controls descriptor generation and encoding.
type SidecarConfig struct {
	// Format is the sidecar encoding
	// Valid values: json (tulip.json), yaml (tulip.yaml)
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"required,oneof=json yaml"`

	// Digests lists the hash algorithms recorded for files.
	// sha256 is always included.
	Digests []string `mapstructure:"digests" yaml:"digests" json:"digests" validate:"dive,oneof=sha256 blake2b-256 xxh64"`

	// DetectContentType records the sniffed MIME type of files
	DetectContentType bool `mapstructure:"detect_content_type" yaml:"detect_content_type" json:"detect_content_type"`

	// Indent pretty-prints JSON sidecars with the given indent string
	Indent string `mapstructure:"indent" yaml:"indent,omitempty" json:"indent,omitempty"`
}

// MetricsConfig controls Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled turns metrics collection on
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// TextfilePath is where the registry is written when a command
	// finishes, for the node exporter textfile collector.
	// Required when Enabled is true.
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path,omitempty" json:"textfile_path,omitempty" validate:"required_if=Enabled true"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TULIP_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: TULIP_LOGGING_LEVEL=DEBUG, TULIP_CONTENT_TYPE=memory
	v.SetEnvPrefix("TULIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so the
	// scalar keys are bound explicitly for environment-only setups.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"content.type",
	"metadata.type",
	"sidecar.format",
	"sidecar.detect_content_type",
	"sidecar.indent",
	"metrics.enabled",
	"metrics.textfile_path",
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tulip")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "tulip")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
