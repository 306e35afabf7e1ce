package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tulipfs/internal/cli/output"
	"github.com/marmos91/tulipfs/pkg/repository"
)

var fsckRepair bool

// ErrInconsistent is returned by fsck when problems remain.
var ErrInconsistent = fmt.Errorf("stores are inconsistent")

var fsckCmd = &cobra.Command{
	Use:   "fsck",
	Short: "Check that every entry has a matching descriptor",
	Long: `Walk both stores and report:
  missing   content entries without a descriptor
  invalid   descriptors that do not decode or describe another entry
  orphan    metadata with no content entry behind it

With --repair, missing and invalid descriptors are regenerated from content
and orphaned metadata is deleted.`,
	Args: cobra.NoArgs,
	RunE: repoRunE(runFsck),
}

func init() {
	fsckCmd.Flags().BoolVar(&fsckRepair, "repair", false, "Fix the reported problems")
}

func runFsck(ctx context.Context, cmd *cobra.Command, repo *repository.Repository, args []string) error {
	report, err := repo.FS().Check(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.Clean() {
		_, _ = fmt.Fprintln(out, "ok")
		return nil
	}

	table := output.NewTableData("PROBLEM", "PATH")
	for _, p := range report.Missing {
		table.AddRow("missing", p)
	}
	for _, p := range report.Invalid {
		table.AddRow("invalid", p)
	}
	for _, p := range report.Orphans {
		table.AddRow("orphan", p)
	}
	output.PrintTable(out, table)

	if !fsckRepair {
		return ErrInconsistent
	}
	if err := repo.FS().Repair(ctx, report); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "repaired")
	return nil
}
