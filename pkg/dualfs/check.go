package dualfs

import (
	"context"
	"errors"

	"github.com/marmos91/tulipfs/internal/logger"
	"github.com/marmos91/tulipfs/pkg/metadata"
	"github.com/marmos91/tulipfs/pkg/store"
)

// Report lists the places where the two stores disagree.
type Report struct {
	// Missing are content entries without a descriptor.
	Missing []string

	// Invalid are content entries whose descriptor does not decode or does
	// not describe them (wrong path or kind).
	Invalid []string

	// Orphans are metadata store files with no content entry behind them.
	// Paths are in the metadata store.
	Orphans []string
}

// Clean reports whether no inconsistency was found.
func (r *Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Invalid) == 0 && len(r.Orphans) == 0
}

// Check walks both stores and reports every entry that breaks the
// one-descriptor-per-entry pairing. It changes nothing.
func (f *FS) Check(ctx context.Context) (report *Report, err error) {
	ctx, done := f.startOp(ctx, "check")
	defer func() { done(err) }()

	report = &Report{}

	// ========================================================================
	// Step 1: Every content entry has a valid descriptor
	// ========================================================================

	err = store.Walk(ctx, f.content, "", func(p string, info *store.Info, err error) error {
		if err != nil {
			return err
		}
		if p == "" {
			return nil
		}

		d, err := f.readDescriptor(ctx, p)
		switch {
		case errors.Is(err, store.ErrNotFound):
			report.Missing = append(report.Missing, p)
		case errors.Is(err, metadata.ErrInvalidDescriptor):
			report.Invalid = append(report.Invalid, p)
		case err != nil:
			return err
		case d.Path != p || d.IsFile() == info.IsDir:
			report.Invalid = append(report.Invalid, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// ========================================================================
	// Step 2: Every metadata file belongs to a content entry
	// ========================================================================

	filename := f.codec.Filename()
	err = store.Walk(ctx, f.meta, "", func(p string, info *store.Info, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir {
			return nil
		}

		entry := store.Dir(p)
		if store.Base(p) == filename && entry != "" {
			exists, err := f.content.Exists(ctx, entry)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
		}
		report.Orphans = append(report.Orphans, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "consistency check finished",
		"missing", len(report.Missing),
		"invalid", len(report.Invalid),
		"orphans", len(report.Orphans))
	return report, nil
}

// Repair fixes what Check reported: missing and invalid descriptors are
// regenerated from content and orphaned metadata is deleted. It returns the
// first error after attempting every fix.
func (f *FS) Repair(ctx context.Context, report *Report) (err error) {
	ctx, done := f.startOp(ctx, "repair")
	defer func() { done(err) }()

	var errs []error

	for _, p := range append(append([]string(nil), report.Missing...), report.Invalid...) {
		if _, err := f.RegenerateMetadata(ctx, p); err != nil {
			logger.WarnCtx(ctx, "cannot regenerate metadata", logger.KeyPath, p, logger.KeyError, err)
			errs = append(errs, err)
		}
	}

	filename := f.codec.Filename()
	for _, p := range report.Orphans {
		target := p
		if entry := store.Dir(p); store.Base(p) == filename && entry != "" {
			target = entry
		}

		err := f.meta.RemoveAll(ctx, target)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.WarnCtx(ctx, "cannot remove orphaned metadata", logger.KeySidecar, p, logger.KeyError, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
