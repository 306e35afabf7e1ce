// Package commands implements the tulip command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	configcmd "github.com/marmos91/tulipfs/cmd/tulip/commands/config"
	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/config"
	"github.com/marmos91/tulipfs/pkg/repository"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile  string
	rootDir  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tulip",
	Short: "tulip - dual-store filesystem with sidecar metadata",
	Long: `tulip keeps a content store and a metadata store in lockstep. Every
file and directory in the content store has a sidecar descriptor (tulip.json
or tulip.yaml) in the metadata store, regenerated whenever the entry changes.

Stores are selected in the configuration file. --root overrides both with a
local repository (ROOT/objects and ROOT/assets).

Use "tulip [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/tulip/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "local repository root, overrides the configured stores")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(fsckCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configcmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = strings.ToUpper(logLevel)
	}

	if rootDir != "" {
		cfg.Content = config.StoreConfig{
			Type:       "filesystem",
			Filesystem: map[string]any{"path": filepath.Join(rootDir, config.ContentDirName)},
		}
		cfg.Metadata = config.StoreConfig{
			Type:       "filesystem",
			Filesystem: map[string]any{"path": filepath.Join(rootDir, config.MetadataDirName)},
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// repoRunE adapts fn into a cobra RunE that opens the repository first and
// closes it afterwards.
func repoRunE(fn func(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := InitLogger(cfg); err != nil {
			return err
		}

		ctx := logger.WithContext(cmd.Context(), &logger.LogContext{
			OpID:      uuid.NewString(),
			Operation: cmd.Name(),
		})

		repo, err := repository.FromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, repo.Close())
		}()

		return fn(ctx, cmd, repo, args)
	}
}
