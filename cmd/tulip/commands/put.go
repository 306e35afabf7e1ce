package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/pkg/repository"
	"github.com/marmos91/tulipfs/pkg/store"
)

var putAppend bool

var putCmd = &cobra.Command{
	Use:   "put SRC DST",
	Short: "Upload a local file",
	Long: `Stream a local file (or stdin when SRC is "-") into DST. Missing parent
directory-entities are created. The descriptor is generated from the stored
bytes once the upload completes. If reading SRC fails, a replaced DST is
removed; with --append the bytes streamed so far are kept.

Examples:
  tulip put ./report.pdf docs/2024/report.pdf
  echo hello | tulip put - notes/hello.txt`,
	Args: cobra.ExactArgs(2),
	RunE: repoRunE(runPut),
}

func init() {
	putCmd.Flags().BoolVarP(&putAppend, "append", "a", false, "Append to DST instead of replacing it")
}

func runPut(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
	src, dst := args[0], args[1]

	var in io.Reader = cmd.InOrStdin()
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	p, err := store.CleanPath(dst)
	if err != nil {
		return err
	}
	if parent := store.Dir(p); parent != "" {
		exists, err := repo.FS().IsDir(ctx, parent)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := repo.CreateObject(ctx, parent, nil); err != nil {
				return err
			}
		}
	}

	mode := store.ModeWrite
	if putAppend {
		mode = store.ModeAppend
	}
	out, err := repo.FS().OpenFile(ctx, p, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		err = fmt.Errorf("upload %s: %w", p, err)
		// Close commits the partial bytes with a descriptor.
		if cerr := out.Close(); cerr == nil && !putAppend {
			if rerr := repo.FS().Remove(ctx, p); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
		return err
	}
	return out.Close()
}
