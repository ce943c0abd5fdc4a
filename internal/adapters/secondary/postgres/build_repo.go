package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

type buildRepo struct {
	pool *pgxpool.Pool
}

func NewBuildRepository(pool *pgxpool.Pool) output.BuildRepository {
	return &buildRepo{pool: pool}
}

const buildColumns = `
	id, created_at, updated_at, chromium_version, package_release,
	patch_set_id, status, current_stage, upstream_revision,
	sandbox_path, failure_message
`

func (r *buildRepo) Create(ctx context.Context, b *domain.Build) error {
	query := `
		INSERT INTO build
			(id, created_at, updated_at, chromium_version, package_release,
			 patch_set_id, status, current_stage, upstream_revision,
			 sandbox_path, failure_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := r.pool.Exec(ctx, query,
		b.ID, b.CreatedAt, b.UpdatedAt, b.ChromiumVersion, b.PackageRelease,
		b.PatchSetID, string(b.Status), string(b.CurrentStage), b.UpstreamRevision,
		b.SandboxPath, b.FailureMessage,
	)
	if err != nil {
		return fmt.Errorf("create build: %w", err)
	}
	return nil
}

func (r *buildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	query := `SELECT ` + buildColumns + ` FROM build WHERE id = $1`
	b, err := scanBuild(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("get build by id: %w", err)
	}
	return b, nil
}

func (r *buildRepo) Update(ctx context.Context, b *domain.Build) error {
	query := `
		UPDATE build
		SET updated_at = $2, status = $3, current_stage = $4,
		    upstream_revision = $5, sandbox_path = $6, failure_message = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		b.ID, b.UpdatedAt, string(b.Status), string(b.CurrentStage),
		b.UpstreamRevision, b.SandboxPath, b.FailureMessage,
	)
	if err != nil {
		return fmt.Errorf("update build: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBuildNotFound
	}
	return nil
}

func (r *buildRepo) List(ctx context.Context, filter output.BuildListFilter) ([]*domain.Build, int, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argn := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argn))
		args = append(args, filter.Status)
		argn++
	}
	if filter.ChromiumVersion != "" {
		conditions = append(conditions, fmt.Sprintf("chromium_version = $%d", argn))
		args = append(args, filter.ChromiumVersion)
		argn++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM build WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count builds: %w", err)
	}

	sortBy := "created_at"
	if filter.SortBy == "updated_at" {
		sortBy = "updated_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM build WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		buildColumns, where, sortBy, order, argn, argn+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var builds []*domain.Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	return builds, total, rows.Err()
}

func (r *buildRepo) CreateStage(ctx context.Context, s *domain.StageResult) error {
	query := `
		INSERT INTO build_stage (id, build_id, stage, status, started_at, finished_at, message)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.BuildID, string(s.Stage), string(s.Status), s.StartedAt, s.FinishedAt, s.Message)
	if err != nil {
		return fmt.Errorf("create build stage: %w", err)
	}
	return nil
}

func (r *buildRepo) UpdateStage(ctx context.Context, s *domain.StageResult) error {
	query := `
		UPDATE build_stage SET status = $2, finished_at = $3, message = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, s.ID, string(s.Status), s.FinishedAt, s.Message)
	if err != nil {
		return fmt.Errorf("update build stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStageNotFound
	}
	return nil
}

func (r *buildRepo) ListStages(ctx context.Context, buildID uuid.UUID) ([]*domain.StageResult, error) {
	query := `
		SELECT id, build_id, stage, status, started_at, finished_at, message
		FROM build_stage
		WHERE build_id = $1
		ORDER BY started_at ASC
	`
	rows, err := r.pool.Query(ctx, query, buildID)
	if err != nil {
		return nil, fmt.Errorf("list build stages: %w", err)
	}
	defer rows.Close()

	var stages []*domain.StageResult
	for rows.Next() {
		s := &domain.StageResult{}
		var stage, status string
		if err := rows.Scan(&s.ID, &s.BuildID, &stage, &status, &s.StartedAt, &s.FinishedAt, &s.Message); err != nil {
			return nil, fmt.Errorf("scan build stage: %w", err)
		}
		s.Stage = domain.Stage(stage)
		s.Status = domain.StageStatus(status)
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *buildRepo) CountUnfinishedByPatchSet(ctx context.Context, patchSetID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM build
		WHERE patch_set_id = $1 AND status IN ('PENDING', 'RUNNING')
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, patchSetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unfinished builds: %w", err)
	}
	return count, nil
}

func scanBuild(row pgx.Row) (*domain.Build, error) {
	b := &domain.Build{}
	var status, stage string
	err := row.Scan(
		&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.ChromiumVersion, &b.PackageRelease,
		&b.PatchSetID, &status, &stage, &b.UpstreamRevision,
		&b.SandboxPath, &b.FailureMessage,
	)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BuildStatus(status)
	b.CurrentStage = domain.Stage(stage)
	return b, nil
}
