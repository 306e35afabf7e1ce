package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/repository"
)

var mvCmd = &cobra.Command{
	Use:   "mv SRC DST",
	Short: "Move an entry and its metadata",
	Long: `Move a file or directory-entity. Descriptors below DST are rewritten
to their new paths. DST must not exist.`,
	Args: cobra.ExactArgs(2),
	RunE: repoRunE(func(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
		return repo.FS().Move(ctx, args[0], args[1])
	}),
}

var cpCmd = &cobra.Command{
	Use:   "cp SRC DST",
	Short: "Copy an entry and its metadata",
	Long: `Copy a file or directory-entity. Copied descriptors keep their extension
fields and are rewritten to their new paths. DST must not exist.`,
	Args: cobra.ExactArgs(2),
	RunE: repoRunE(func(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
		return repo.FS().Copy(ctx, args[0], args[1])
	}),
}
