package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
	"github.com/fxdian/ungoogled-chromium/internal/patch"
)

type PatchSetService struct {
	repo   output.PatchSetRepository
	builds output.BuildRepository
}

func NewPatchSetService(repo output.PatchSetRepository, builds output.BuildRepository) *PatchSetService {
	return &PatchSetService{repo: repo, builds: builds}
}

type PatchInput struct {
	FileName string
	Body     string
}

func (s *PatchSetService) Create(ctx context.Context, name, description string, inputs []PatchInput) (*domain.PatchSet, error) {
	if name == "" {
		return nil, domain.ErrInvalidPatchSetName
	}
	if len(inputs) == 0 {
		return nil, domain.ErrEmptyPatchSeries
	}

	now := time.Now()
	set := &domain.PatchSet{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        name,
		Description: description,
	}
	for i, in := range inputs {
		parsed, err := patch.Parse(in.Body)
		if err != nil {
			return nil, domain.ErrMalformedPatch
		}
		set.Patches = append(set.Patches, domain.Patch{
			ID:         uuid.New(),
			PatchSetID: set.ID,
			Position:   i + 1,
			FileName:   in.FileName,
			Subject:    parsed.Header.Subject,
			Author:     parsed.Header.Author,
			Body:       in.Body,
		})
	}

	if err := s.repo.Create(ctx, set); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, set.ID)
}

func (s *PatchSetService) Get(ctx context.Context, id uuid.UUID) (*domain.PatchSet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatchSetService) List(ctx context.Context, limit, offset int) ([]*domain.PatchSet, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *PatchSetService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.builds.CountUnfinishedByPatchSet(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrPatchSetInUse
	}
	return s.repo.Delete(ctx, id)
}

// ValidationResult reports whether one patch of a series parses as a
// well-formed unified diff.
type ValidationResult struct {
	FileName string `json:"file_name"`
	Position int    `json:"position"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
	Files    int    `json:"files"`
}

// Validate re-parses every patch in the set. Context matching against a
// real tree happens only inside a pipeline run; this catches diffs that
// could never apply anywhere.
func (s *PatchSetService) Validate(ctx context.Context, id uuid.UUID) ([]ValidationResult, error) {
	set, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(set.Patches))
	for _, p := range set.Patches {
		res := ValidationResult{FileName: p.FileName, Position: p.Position, Valid: true}
		parsed, err := patch.Parse(p.Body)
		if err != nil {
			res.Valid = false
			res.Error = err.Error()
		} else {
			res.Files = len(parsed.Files)
		}
		results = append(results, res)
	}
	return results, nil
}
