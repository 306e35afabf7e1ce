package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Print the configuration after merging the file, TULIP_* environment
variables and defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile(cmd))
		if err != nil {
			return err
		}
		data, err := config.MarshalYAML(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
