package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/repository"
	"github.com/marmos91/tulipfs/pkg/store"
	"github.com/marmos91/tulipfs/pkg/store/archive"
)

var (
	exportCompression string
	exportMetadata    bool
)

var exportCmd = &cobra.Command{
	Use:   "export PATH FILE",
	Short: "Write a subtree to a tar archive",
	Long: `Write the content below PATH ("" or / for everything) to FILE as a tar
archive. The compression is taken from --compression or guessed from the
file extension (.tar, .tar.gz, .tar.bz2 is read-only, .tar.xz, .tar.zst,
.tar.lz4).

An archive of the metadata store (--metadata) can be mounted back as a
read-only metadata store with type "archive".

Examples:
  tulip export images images.tar.zst
  tulip export --metadata / assets.tar.gz`,
	Args: cobra.ExactArgs(2),
	RunE: repoRunE(runExport),
}

func init() {
	exportCmd.Flags().StringVarP(&exportCompression, "compression", "c", "auto", "Compression (auto, none, gzip, xz, zstd, lz4)")
	exportCmd.Flags().BoolVar(&exportMetadata, "metadata", false, "Export the metadata store instead of content")
}

func runExport(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) (err error) {
	root, err := store.CleanPath(args[0])
	if err != nil {
		return err
	}
	dest := args[1]

	c, err := archive.ParseCompression(exportCompression)
	if err != nil {
		return err
	}
	if c == archive.Auto {
		c = archive.FromExtension(dest)
		if c == archive.Auto {
			c = archive.None
		}
	}

	src := repo.FS().Content()
	if exportMetadata {
		src = repo.FS().Meta()
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	n, err := archive.Export(ctx, f, src, root, c)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Export completed", logger.KeyPath, root, "file", dest, "entries", n, "compression", string(c))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d entries written to %s\n", n, dest)
	return nil
}
