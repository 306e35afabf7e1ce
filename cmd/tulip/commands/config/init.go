package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default tulip configuration file.

By default, the file is created at $XDG_CONFIG_HOME/tulip/config.yaml.
Use --config to choose another path.

Examples:
  tulip config init
  tulip config init --config ./tulip.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configFile(cmd)

	var err error
	if path != "" {
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
	return nil
}
