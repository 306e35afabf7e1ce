package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile(cmd)
		if _, err := config.Load(path); err != nil {
			return err
		}
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", path)
		return nil
	},
}
