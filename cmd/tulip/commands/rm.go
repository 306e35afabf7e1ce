package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/repository"
)

var rmRecursive bool

var rmCmd = &cobra.Command{
	Use:   "rm PATH...",
	Short: "Remove entries and their descriptors",
	Long: `Remove files or empty directory-entities together with their metadata.
With -r, directory-entities are removed with everything below them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: repoRunE(runRm),
}

func init() {
	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "r", false, "Remove directory-entities and their contents")
}

func runRm(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
	for _, p := range args {
		var err error
		if rmRecursive {
			err = repo.FS().RemoveAll(ctx, p)
		} else {
			err = repo.FS().Remove(ctx, p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
