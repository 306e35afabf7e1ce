package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/repository"
)

var mkdirParents bool

var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH...",
	Short: "Create directory-entities",
	Long: `Create directory-entities together with their descriptors.

Without -p the parent must exist and PATH must not.

Examples:
  tulip mkdir images
  tulip mkdir -p images/dogs/corgis`,
	Args: cobra.MinimumNArgs(1),
	RunE: repoRunE(runMkdir),
}

func init() {
	mkdirCmd.Flags().BoolVarP(&mkdirParents, "parents", "p", false, "Create missing parents, no error if PATH exists")
}

func runMkdir(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
	for _, p := range args {
		var err error
		if mkdirParents {
			_, err = repo.CreateObject(ctx, p, nil)
		} else {
			err = repo.FS().MakeDir(ctx, p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
