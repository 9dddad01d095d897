package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"doc-chat/internal/domain"
)

type ExcerptRepository interface {
	Create(ctx context.Context, excerpt domain.DocumentExcerpt) error
	Search(ctx context.Context, documentID string, queryEmbedding pgvector.Vector, k int) ([]domain.DocumentExcerpt, error)
}

type PgExcerptRepository struct {
	pool *pgxpool.Pool
}

func NewPgExcerptRepository(pool *pgxpool.Pool) *PgExcerptRepository {
	return &PgExcerptRepository{pool: pool}
}

func (r *PgExcerptRepository) Create(ctx context.Context, excerpt domain.DocumentExcerpt) error {
	const query = `
		INSERT INTO document_excerpts (id, document_id, page, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		excerpt.ID,
		excerpt.DocumentID,
		excerpt.Page,
		excerpt.Content,
		excerpt.Embedding,
		excerpt.CreatedAt,
	)
	return err
}

// Search devuelve los k fragmentos más cercanos por distancia coseno dentro de
// un documento.
func (r *PgExcerptRepository) Search(ctx context.Context, documentID string, queryEmbedding pgvector.Vector, k int) ([]domain.DocumentExcerpt, error) {
	if k <= 0 {
		k = 4
	}
	const query = `
		SELECT id, document_id, page, content, embedding, created_at
		FROM document_excerpts
		WHERE document_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, documentID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExcerpts(rows)
}

func scanExcerpts(rows pgxRows) ([]domain.DocumentExcerpt, error) {
	var excerpts []domain.DocumentExcerpt
	for rows.Next() {
		var e domain.DocumentExcerpt
		if err := rows.Scan(
			&e.ID,
			&e.DocumentID,
			&e.Page,
			&e.Content,
			&e.Embedding,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		excerpts = append(excerpts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return excerpts, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
