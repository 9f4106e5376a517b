package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	CurrentAreaID     *int64
	CurrentEmployeeID *int64
	Statuses          []domain.DocumentStatus
	Priorities        []domain.Priority
	// Limit <= 0 returns every matching document.
	Limit  int
	Offset int
}

// DocumentRepository encapsulates document persistence.
//
// Create and ApplyTransition write the document together with a ledger entry
// in a single transaction so the cached location never diverges from the ledger.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document, initial *domain.DocumentTracking) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)
	// MaxProcessSequence and MaxTrackingSequence return the highest numeric
	// suffix among numbers starting with prefix, or 0 when there is none.
	MaxProcessSequence(ctx context.Context, prefix string) (int, error)
	MaxTrackingSequence(ctx context.Context, prefix string) (int, error)
	ApplyTransition(ctx context.Context, doc *domain.Document, entry *domain.DocumentTracking) error
	Delete(ctx context.Context, id int64, cascade bool) error
	ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Document, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository instantiates repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

const documentColumns = `id, process_number, tracking_number, document_type_id, priority, origin_area_id,
               current_area_id, current_employee_id, status, subject, folios, file_path,
               deadline_days, deadline, created_by, created_at, updated_at, version`

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document, initial *domain.DocumentTracking) error {
	const query = `
        INSERT INTO documents (process_number, tracking_number, document_type_id, priority, origin_area_id,
            current_area_id, current_employee_id, status, subject, folios, file_path, deadline_days, deadline, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at, version`
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			doc.ProcessNumber,
			doc.TrackingNumber,
			doc.DocumentTypeID,
			doc.Priority,
			doc.OriginAreaID,
			doc.CurrentAreaID,
			doc.CurrentEmployeeID,
			doc.Status,
			doc.Subject,
			doc.Folios,
			doc.FilePath,
			doc.DeadlineDays,
			doc.Deadline,
			doc.CreatedBy,
		).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt, &doc.Version); err != nil {
			return err
		}
		initial.DocumentID = doc.ID
		return insertTracking(ctx, tx, initial)
	})
	return translate(err)
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id=$1`
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]domain.Document, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CurrentAreaID != nil {
		args = append(args, *filter.CurrentAreaID)
		clauses = append(clauses, fmt.Sprintf("current_area_id=$%d", len(args)))
	}
	if filter.CurrentEmployeeID != nil {
		args = append(args, *filter.CurrentEmployeeID)
		clauses = append(clauses, fmt.Sprintf("current_employee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC, id DESC`,
		documentColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (r *documentRepository) MaxProcessSequence(ctx context.Context, prefix string) (int, error) {
	return r.maxSequence(ctx, `
		SELECT COALESCE(MAX(CAST(substring(process_number FROM $2::int) AS INTEGER)), 0)
		FROM documents
		WHERE process_number LIKE $1 AND substring(process_number FROM $2::int) ~ '^[0-9]+$'`, prefix)
}

func (r *documentRepository) MaxTrackingSequence(ctx context.Context, prefix string) (int, error) {
	return r.maxSequence(ctx, `
		SELECT COALESCE(MAX(CAST(substring(tracking_number FROM $2::int) AS INTEGER)), 0)
		FROM documents
		WHERE tracking_number LIKE $1 AND substring(tracking_number FROM $2::int) ~ '^[0-9]+$'`, prefix)
}

// maxSequence reads the suffix after prefix; prefixes are ASCII so byte and character offsets agree.
func (r *documentRepository) maxSequence(ctx context.Context, query, prefix string) (int, error) {
	var highest int
	if err := r.pool.QueryRow(ctx, query, escapeLike(prefix)+"%", len(prefix)+1).Scan(&highest); err != nil {
		return 0, err
	}
	return highest, nil
}

func (r *documentRepository) ApplyTransition(ctx context.Context, doc *domain.Document, entry *domain.DocumentTracking) error {
	const update = `
        UPDATE documents SET current_area_id=$1, current_employee_id=$2, status=$3, deadline_days=$4,
            deadline=$5, updated_at=NOW(), version=version+1
        WHERE id=$6 AND version=$7
        RETURNING updated_at, version`
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, update,
			doc.CurrentAreaID,
			doc.CurrentEmployeeID,
			doc.Status,
			doc.DeadlineDays,
			doc.Deadline,
			doc.ID,
			doc.Version,
		).Scan(&doc.UpdatedAt, &doc.Version)
		if err == pgx.ErrNoRows {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE id=$1)`, doc.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return pgx.ErrNoRows
			}
			return ErrVersionConflict
		}
		if err != nil {
			return err
		}
		entry.DocumentID = doc.ID
		return insertTracking(ctx, tx, entry)
	})
	return translate(err)
}

func (r *documentRepository) Delete(ctx context.Context, id int64, cascade bool) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM documents WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if cascade {
			if _, err := tx.Exec(ctx, `DELETE FROM document_tracking WHERE document_id=$1`, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *documentRepository) ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + `
        FROM documents WHERE deadline IS NOT NULL AND deadline >= $1 AND deadline <= $2
        ORDER BY deadline ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(
		&doc.ID,
		&doc.ProcessNumber,
		&doc.TrackingNumber,
		&doc.DocumentTypeID,
		&doc.Priority,
		&doc.OriginAreaID,
		&doc.CurrentAreaID,
		&doc.CurrentEmployeeID,
		&doc.Status,
		&doc.Subject,
		&doc.Folios,
		&doc.FilePath,
		&doc.DeadlineDays,
		&doc.Deadline,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.Version,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]domain.Document, error) {
	var result []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *doc)
	}
	return result, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
