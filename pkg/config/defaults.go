package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/tulipfs/pkg/metadata"
)

// Directory names of the two stores below a local repository root.
const (
	ContentDirName  = "objects"
	MetadataDirName = "assets"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Backend-specific defaults (cache sizes, modes) are handled by the backends
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyStoreDefaults(&cfg.Content, ContentDirName)
	applyStoreDefaults(&cfg.Metadata, MetadataDirName)
	applySidecarDefaults(&cfg.Sidecar)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// stdout carries command output
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyStoreDefaults sets store defaults. A local filesystem store below
// the data directory is used when nothing is configured.
func applyStoreDefaults(cfg *StoreConfig, dirName string) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if _, ok := cfg.Filesystem["path"]; !ok && cfg.Type == "filesystem" {
		cfg.Filesystem["path"] = filepath.Join(getDataDir(), dirName)
	}

	if cfg.Type == "badger" {
		if cfg.Badger == nil {
			cfg.Badger = make(map[string]any)
		}
		_, hasPath := cfg.Badger["path"]
		inMemory, _ := cfg.Badger["in_memory"].(bool)
		if !hasPath && !inMemory {
			cfg.Badger["path"] = filepath.Join(getDataDir(), dirName+".badger")
		}
	}
}

// applySidecarDefaults sets sidecar defaults.
func applySidecarDefaults(cfg *SidecarConfig) {
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if len(cfg.Digests) == 0 {
		cfg.Digests = []string{metadata.DigestSHA256}
	}
}

// getDataDir returns the directory holding the default local stores.
//
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share, or falls back to
// the current directory.
func getDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "tulip")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "tulip"
	}

	return filepath.Join(home, ".local", "share", "tulip")
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
//
// The default configuration stores sidecars as JSON with the sha256 digest
// and sniffs content types.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Sidecar: SidecarConfig{
			DetectContentType: true,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
