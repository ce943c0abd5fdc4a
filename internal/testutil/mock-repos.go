package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	"github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

// MockBuildRepo is a mock of BuildRepository.
type MockBuildRepo struct {
	mock.Mock
}

func (m *MockBuildRepo) Create(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockBuildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Build), args.Error(1)
}

func (m *MockBuildRepo) Update(ctx context.Context, build *domain.Build) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockBuildRepo) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Build), args.Int(1), args.Error(2)
}

func (m *MockBuildRepo) CreateStage(ctx context.Context, stage *domain.StageResult) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *MockBuildRepo) UpdateStage(ctx context.Context, stage *domain.StageResult) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *MockBuildRepo) ListStages(ctx context.Context, buildID uuid.UUID) ([]*domain.StageResult, error) {
	args := m.Called(ctx, buildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StageResult), args.Error(1)
}

func (m *MockBuildRepo) CountUnfinishedByPatchSet(ctx context.Context, patchSetID uuid.UUID) (int, error) {
	args := m.Called(ctx, patchSetID)
	return args.Int(0), args.Error(1)
}

// MockPatchSetRepo is a mock of PatchSetRepository.
type MockPatchSetRepo struct {
	mock.Mock
}

func (m *MockPatchSetRepo) Create(ctx context.Context, set *domain.PatchSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockPatchSetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PatchSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatchSet), args.Error(1)
}

func (m *MockPatchSetRepo) GetByName(ctx context.Context, name string) (*domain.PatchSet, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatchSet), args.Error(1)
}

func (m *MockPatchSetRepo) List(ctx context.Context, limit, offset int) ([]*domain.PatchSet, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.PatchSet), args.Int(1), args.Error(2)
}

func (m *MockPatchSetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
