package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// AreaRepository manages area persistence.
type AreaRepository interface {
	Create(ctx context.Context, area *domain.Area) error
	Update(ctx context.Context, area *domain.Area) error
	GetByID(ctx context.Context, id int64) (*domain.Area, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Area, error)
}

type areaRepository struct {
	pool *pgxpool.Pool
}

// NewAreaRepository builds the repository.
func NewAreaRepository(pool *pgxpool.Pool) AreaRepository {
	return &areaRepository{pool: pool}
}

func (r *areaRepository) Create(ctx context.Context, area *domain.Area) error {
	const query = `
        INSERT INTO areas (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		area.Name,
		area.Description,
		area.IsActive,
	).Scan(&area.ID, &area.CreatedAt, &area.UpdatedAt)
	return translate(err)
}

func (r *areaRepository) Update(ctx context.Context, area *domain.Area) error {
	const query = `
        UPDATE areas SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		area.Name,
		area.Description,
		area.IsActive,
		area.ID,
	).Scan(&area.UpdatedAt)
	return translate(err)
}

func (r *areaRepository) GetByID(ctx context.Context, id int64) (*domain.Area, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM areas WHERE id=$1`
	var area domain.Area
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&area.ID,
		&area.Name,
		&area.Description,
		&area.IsActive,
		&area.CreatedAt,
		&area.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) List(ctx context.Context, includeInactive bool) ([]domain.Area, error) {
	query := `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM areas`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Area
	for rows.Next() {
		var area domain.Area
		if err := rows.Scan(&area.ID, &area.Name, &area.Description, &area.IsActive, &area.CreatedAt, &area.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, area)
	}
	return result, rows.Err()
}
