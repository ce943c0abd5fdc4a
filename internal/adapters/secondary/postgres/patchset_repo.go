package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

type patchSetRepo struct {
	pool *pgxpool.Pool
}

func NewPatchSetRepository(pool *pgxpool.Pool) output.PatchSetRepository {
	return &patchSetRepo{pool: pool}
}

func (r *patchSetRepo) Create(ctx context.Context, set *domain.PatchSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO patch_set (id, created_at, updated_at, name, description)
		VALUES ($1,$2,$3,$4,$5)
	`
	if _, err := tx.Exec(ctx, query, set.ID, set.CreatedAt, set.UpdatedAt, set.Name, set.Description); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrPatchSetNameConflict
		}
		return fmt.Errorf("create patch set: %w", err)
	}

	patchQuery := `
		INSERT INTO patch (id, patch_set_id, position, file_name, subject, author, body)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	for _, p := range set.Patches {
		if _, err := tx.Exec(ctx, patchQuery,
			p.ID, set.ID, p.Position, p.FileName, p.Subject, p.Author, p.Body); err != nil {
			return fmt.Errorf("create patch %s: %w", p.FileName, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *patchSetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PatchSet, error) {
	query := `SELECT id, created_at, updated_at, name, description FROM patch_set WHERE id = $1`
	set := &domain.PatchSet{}
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&set.ID, &set.CreatedAt, &set.UpdatedAt, &set.Name, &set.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPatchSetNotFound
		}
		return nil, fmt.Errorf("get patch set by id: %w", err)
	}
	if err := r.loadPatches(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *patchSetRepo) GetByName(ctx context.Context, name string) (*domain.PatchSet, error) {
	query := `SELECT id, created_at, updated_at, name, description FROM patch_set WHERE name = $1`
	set := &domain.PatchSet{}
	err := r.pool.QueryRow(ctx, query, name).
		Scan(&set.ID, &set.CreatedAt, &set.UpdatedAt, &set.Name, &set.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPatchSetNotFound
		}
		return nil, fmt.Errorf("get patch set by name: %w", err)
	}
	if err := r.loadPatches(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *patchSetRepo) List(ctx context.Context, limit, offset int) ([]*domain.PatchSet, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patch_set`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patch sets: %w", err)
	}

	query := `
		SELECT id, created_at, updated_at, name, description
		FROM patch_set
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patch sets: %w", err)
	}
	defer rows.Close()

	var sets []*domain.PatchSet
	for rows.Next() {
		set := &domain.PatchSet{}
		if err := rows.Scan(&set.ID, &set.CreatedAt, &set.UpdatedAt, &set.Name, &set.Description); err != nil {
			return nil, 0, fmt.Errorf("scan patch set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, set := range sets {
		if err := r.loadPatches(ctx, set); err != nil {
			return nil, 0, err
		}
	}
	return sets, total, nil
}

func (r *patchSetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patch_set WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patch set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPatchSetNotFound
	}
	return nil
}

func (r *patchSetRepo) loadPatches(ctx context.Context, set *domain.PatchSet) error {
	query := `
		SELECT id, patch_set_id, position, file_name, subject, author, body
		FROM patch
		WHERE patch_set_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, set.ID)
	if err != nil {
		return fmt.Errorf("list patches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Patch
		if err := rows.Scan(&p.ID, &p.PatchSetID, &p.Position, &p.FileName, &p.Subject, &p.Author, &p.Body); err != nil {
			return fmt.Errorf("scan patch: %w", err)
		}
		set.Patches = append(set.Patches, p)
	}
	return rows.Err()
}
