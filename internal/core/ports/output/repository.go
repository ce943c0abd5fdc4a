package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
)

type BuildListFilter struct {
	Status          string
	ChromiumVersion string
	SortBy          string
	Order           string
	Limit           int
	Offset          int
}

type BuildRepository interface {
	Create(ctx context.Context, build *domain.Build) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error)
	Update(ctx context.Context, build *domain.Build) error
	List(ctx context.Context, filter BuildListFilter) ([]*domain.Build, int, error)
	CreateStage(ctx context.Context, stage *domain.StageResult) error
	UpdateStage(ctx context.Context, stage *domain.StageResult) error
	ListStages(ctx context.Context, buildID uuid.UUID) ([]*domain.StageResult, error)
	CountUnfinishedByPatchSet(ctx context.Context, patchSetID uuid.UUID) (int, error)
}

type PatchSetRepository interface {
	Create(ctx context.Context, set *domain.PatchSet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PatchSet, error)
	GetByName(ctx context.Context, name string) (*domain.PatchSet, error)
	List(ctx context.Context, limit, offset int) ([]*domain.PatchSet, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
