package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// TrackingRepository reads the append-only document ledger. Entries are
// written only through DocumentRepository.
type TrackingRepository interface {
	ListByDocument(ctx context.Context, documentID int64) (domain.Ledger, error)
	CountByDocument(ctx context.Context, documentID int64) (int, error)
}

type trackingRepository struct {
	pool *pgxpool.Pool
}

// NewTrackingRepository builds repository.
func NewTrackingRepository(pool *pgxpool.Pool) TrackingRepository {
	return &trackingRepository{pool: pool}
}

func insertTracking(ctx context.Context, tx pgx.Tx, entry *domain.DocumentTracking) error {
	const query = `
        INSERT INTO document_tracking (document_id, from_area_id, to_area_id, from_employee_id, to_employee_id,
            description, attachment_path, deadline_days, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		entry.DocumentID,
		entry.FromAreaID,
		entry.ToAreaID,
		entry.FromEmployeeID,
		entry.ToEmployeeID,
		entry.Description,
		entry.AttachmentPath,
		entry.DeadlineDays,
		entry.CreatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *trackingRepository) ListByDocument(ctx context.Context, documentID int64) (domain.Ledger, error) {
	const query = `
        SELECT id, document_id, from_area_id, to_area_id, from_employee_id, to_employee_id,
               description, attachment_path, deadline_days, created_by, created_at
        FROM document_tracking WHERE document_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result domain.Ledger
	for rows.Next() {
		var entry domain.DocumentTracking
		if err := rows.Scan(
			&entry.ID,
			&entry.DocumentID,
			&entry.FromAreaID,
			&entry.ToAreaID,
			&entry.FromEmployeeID,
			&entry.ToEmployeeID,
			&entry.Description,
			&entry.AttachmentPath,
			&entry.DeadlineDays,
			&entry.CreatedBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *trackingRepository) CountByDocument(ctx context.Context, documentID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM document_tracking WHERE document_id=$1`, documentID).Scan(&count)
	return count, err
}
