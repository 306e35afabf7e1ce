package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/tulipfs/internal/cli/output"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/repository"
)

var metaOutput string

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Read and edit descriptors",
	Long: `Read and edit the sidecar descriptor of an entry.

Subcommands:
  get    Print the descriptor
  set    Merge extension fields into the descriptor
  regen  Regenerate the descriptor from content`,
}

var metaGetCmd = &cobra.Command{
	Use:   "get PATH",
	Short: "Print the descriptor of PATH",
	Args:  cobra.ExactArgs(1),
	RunE: repoRunE(func(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
		d, err := repo.FS().ReadMetadata(ctx, args[0])
		if err != nil {
			return err
		}
		return printDescriptor(cmd, d)
	}),
}

var metaSetCmd = &cobra.Command{
	Use:   "set PATH KEY=VALUE...",
	Short: "Merge extension fields into the descriptor of PATH",
	Long: `Merge KEY=VALUE pairs into the descriptor of PATH. Values are parsed as
YAML scalars, so numbers and booleans keep their type; quote them to force
strings. type, path and name cannot be changed.

Examples:
  tulip meta set images/dog.png owner=alice reviewed=true rating=4
  tulip meta set docs/a.txt 'version="1.0"'`,
	Args: cobra.MinimumNArgs(2),
	RunE: repoRunE(func(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
		mixins, err := parseMixins(args[1:])
		if err != nil {
			return err
		}
		d, err := repo.FS().UpdateMetadata(ctx, args[0], mixins)
		if err != nil {
			return err
		}
		return printDescriptor(cmd, d)
	}),
}

var metaRegenCmd = &cobra.Command{
	Use:   "regen PATH",
	Short: "Regenerate the descriptor of PATH from its content",
	Args:  cobra.ExactArgs(1),
	RunE: repoRunE(func(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
		d, err := repo.FS().RegenerateMetadata(ctx, args[0])
		if err != nil {
			return err
		}
		return printDescriptor(cmd, d)
	}),
}

func init() {
	metaCmd.PersistentFlags().StringVarP(&metaOutput, "output", "o", "json", "Output format (table, json, yaml)")

	metaCmd.AddCommand(metaGetCmd)
	metaCmd.AddCommand(metaSetCmd)
	metaCmd.AddCommand(metaRegenCmd)
}

// parseMixins turns KEY=VALUE arguments into a mixin mapping.
func parseMixins(pairs []string) (map[string]any, error) {
	mixins := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected KEY=VALUE", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		// yaml decodes an empty document to nil; keep the empty string.
		if raw == "" {
			value = ""
		}
		mixins[key] = value
	}
	return mixins, nil
}

func printDescriptor(cmd *cobra.Command, d *metadata.Descriptor) error {
	format, err := output.ParseFormat(metaOutput)
	if err != nil {
		return err
	}

	m := d.ToMap()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := output.NewTableData("KEY", "VALUE")
	for _, k := range keys {
		table.AddRow(k, fmt.Sprint(m[k]))
	}
	return output.Print(cmd.OutOrStdout(), format, m, table)
}
