package domain

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// DocumentExcerpt es un fragmento indexado de un PDF, escrito por el pipeline
// de ingesta externo. Usamos uuid.UUID para IDs y pgvector.Vector para embeddings.
type DocumentExcerpt struct {
	ID         uuid.UUID       `json:"id"`
	DocumentID string          `json:"document_id"`
	Page       int             `json:"page"`
	Content    string          `json:"content"`
	Embedding  pgvector.Vector `json:"embedding"`
	CreatedAt  time.Time       `json:"created_at"`
}
