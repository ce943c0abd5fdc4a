package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

type BuildService struct {
	repo      output.BuildRepository
	patchSets output.PatchSetRepository
}

func NewBuildService(repo output.BuildRepository, patchSets output.PatchSetRepository) *BuildService {
	return &BuildService{repo: repo, patchSets: patchSets}
}

func (s *BuildService) Create(ctx context.Context, chromiumVersion string, packageRelease int, patchSetID *uuid.UUID) (*domain.Build, error) {
	if chromiumVersion == "" {
		return nil, domain.ErrInvalidChromiumVersion
	}
	if patchSetID != nil {
		if _, err := s.patchSets.GetByID(ctx, *patchSetID); err != nil {
			return nil, err
		}
	}
	if packageRelease <= 0 {
		packageRelease = 1
	}

	now := time.Now()
	build := &domain.Build{
		ID:              uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		ChromiumVersion: chromiumVersion,
		PackageRelease:  packageRelease,
		PatchSetID:      patchSetID,
		Status:          domain.BuildStatusPending,
	}
	if err := s.repo.Create(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}

func (s *BuildService) Get(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BuildService) List(ctx context.Context, filter output.BuildListFilter) ([]*domain.Build, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func (s *BuildService) ListStages(ctx context.Context, id uuid.UUID) ([]*domain.StageResult, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListStages(ctx, id)
}

func (s *BuildService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	build, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if build.Terminal() {
		return nil, domain.ErrBuildNotCancellable
	}

	build.Status = domain.BuildStatusCancelled
	build.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, build); err != nil {
		return nil, err
	}
	return build, nil
}
