package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doc-chat/internal/domain"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	GetByID(ctx context.Context, id string) (domain.Document, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (domain.Document, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, pageCount int, failReason string) error
}

type PgDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPgDocumentRepository(pool *pgxpool.Pool) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

func (r *PgDocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	const query = `
		INSERT INTO documents (id, user_id, name, status, page_count, fail_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Name,
		doc.Status,
		doc.PageCount,
		doc.FailReason,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

func (r *PgDocumentRepository) GetByID(ctx context.Context, id string) (domain.Document, error) {
	const query = `
		SELECT id, user_id, name, status, page_count, fail_reason, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByIDAndUser resuelve (documento, usuario) -> documento o not-found. Un
// documento ajeno se reporta igual que uno inexistente.
func (r *PgDocumentRepository) GetByIDAndUser(ctx context.Context, id, userID string) (domain.Document, error) {
	const query = `
		SELECT id, user_id, name, status, page_count, fail_reason, created_at, updated_at
		FROM documents
		WHERE id = $1 AND user_id = $2
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *PgDocumentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Document, error) {
	const query = `
		SELECT id, user_id, name, status, page_count, fail_reason, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Name,
			&d.Status,
			&d.PageCount,
			&d.FailReason,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PgDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, pageCount int, failReason string) error {
	const query = `
		UPDATE documents
		SET status = $2, page_count = $3, fail_reason = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, status, pageCount, failReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *PgDocumentRepository) scanOne(row pgx.Row) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Status,
		&d.PageCount,
		&d.FailReason,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Document{}, ErrDocumentNotFound
	}
	return d, err
}
