package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/internal/cli/output"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/repository"
	"github.com/marmos91/tulipfs/pkg/store"
)

var (
	lsLong   bool
	lsOutput string
)

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List directory contents",
	Long: `List the entries of a directory-entity (the root by default).

With -l, each entry is shown with its kind, size, modification time and
the sha256 digest recorded in its descriptor.

Examples:
  tulip ls
  tulip ls -l images
  tulip ls -o json images`,
	Args: cobra.MaximumNArgs(1),
	RunE: repoRunE(runLs),
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Show kind, size, time and digest")
	lsCmd.Flags().StringVarP(&lsOutput, "output", "o", "table", "Output format (table, json, yaml)")
}

// listing is one row of ls output.
type listing struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Type     string `json:"type" yaml:"type"`
	Size     int64  `json:"size" yaml:"size"`
	Modified string `json:"modified,omitempty" yaml:"modified,omitempty"`
	SHA256   string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

func runLs(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
	format, err := output.ParseFormat(lsOutput)
	if err != nil {
		return err
	}

	p := ""
	if len(args) == 1 {
		p = args[0]
	}

	info, err := repo.FS().Stat(ctx, p)
	if err != nil {
		return err
	}
	infos := []store.Info{*info}
	if info.IsDir {
		if infos, err = repo.FS().ReadDir(ctx, p); err != nil {
			return err
		}
	}

	rows := make([]listing, 0, len(infos))
	for _, info := range infos {
		row, err := describeListing(ctx, repo, info)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if format == output.FormatTable && !lsLong {
		for _, row := range rows {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), row.Name)
		}
		return nil
	}

	table := output.NewTableData("NAME", "TYPE", "SIZE", "MODIFIED", "SHA256")
	for _, row := range rows {
		table.AddRow(row.Name, row.Type, strconv.FormatInt(row.Size, 10), row.Modified, dash(row.SHA256))
	}
	return output.Print(cmd.OutOrStdout(), format, rows, table)
}

func describeListing(ctx context.Context, repo *repository.Repository, info store.Info) (listing, error) {
	row := listing{
		Name: info.Name,
		Path: info.Path,
		Type: string(metadata.KindFile),
		Size: info.Size,
	}
	if info.IsDir {
		row.Type = string(metadata.KindObject)
	}
	if !info.ModTime.IsZero() {
		row.Modified = info.ModTime.UTC().Format(time.RFC3339)
	}

	if !lsLong && lsOutput == "table" {
		return row, nil
	}

	// A missing descriptor is reported by fsck; ls still lists the entry.
	d, err := repo.FS().ReadMetadata(ctx, info.Path)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return row, err
	default:
		row.SHA256 = d.Digest(metadata.DigestSHA256)
	}
	return row, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
