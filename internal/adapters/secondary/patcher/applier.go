package patcher

import (
	"context"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/patch"
)

type applier struct{}

func NewApplier() output.PatchApplier {
	return &applier{}
}

// ApplySeries applies patches in series order. The first patch that fails
// to apply aborts the series.
func (a *applier) ApplySeries(ctx context.Context, root string, patches []domain.Patch) error {
	ordered := make([]domain.Patch, len(patches))
	copy(ordered, patches)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	for _, p := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		set, err := patch.Parse(p.Body)
		if err != nil {
			return fmt.Errorf("parse %s: %v: %w", p.FileName, err, domain.ErrMalformedPatch)
		}
		if err := patch.ApplyTree(root, set); err != nil {
			if errors.Is(err, patch.ErrContextMismatch) || errors.Is(err, patch.ErrTargetMissing) {
				return fmt.Errorf("%s: %v: %w", p.FileName, err, domain.ErrPatchContextMismatch)
			}
			return fmt.Errorf("apply %s: %w", p.FileName, err)
		}
		log.WithFields(log.Fields{"patch": p.FileName, "position": p.Position}).Info("patch applied")
	}
	return nil
}
