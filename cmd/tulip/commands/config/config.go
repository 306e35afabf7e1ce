// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage tulip configuration files.

Subcommands:
  init      Write a default configuration file
  show      Display the effective configuration
  validate  Validate a configuration file
  schema    Generate JSON schema for IDE/validation`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}

// configFile returns the value of the global --config flag.
func configFile(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
