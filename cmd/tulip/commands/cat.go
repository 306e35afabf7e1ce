package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/repository"
	"github.com/marmos91/tulipfs/pkg/store"
)

var catCmd = &cobra.Command{
	Use:   "cat PATH...",
	Short: "Print file contents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  repoRunE(runCat),
}

func runCat(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
	for _, p := range args {
		f, err := repo.FS().OpenFile(ctx, p, store.ModeRead)
		if err != nil {
			return err
		}
		_, err = io.Copy(cmd.OutOrStdout(), f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
