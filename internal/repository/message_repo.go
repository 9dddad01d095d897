package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"doc-chat/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByDocument(ctx context.Context, documentID string, limit int, cursor string) (domain.MessagePage, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, document_id, user_id, text, is_user_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.DocumentID,
		message.UserID,
		message.Text,
		message.IsUserMessage,
		message.CreatedAt,
	)
	return err
}

// ListByDocument pagina por keyset del más nuevo al más viejo. El cursor es el
// id del primer mensaje de la página pedida (inclusivo); se consulta una fila
// extra para saber si existe página siguiente.
func (r *PgMessageRepository) ListByDocument(ctx context.Context, documentID string, limit int, cursor string) (domain.MessagePage, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `
		SELECT id, document_id, user_id, text, is_user_message, created_at
		FROM messages
		WHERE document_id = $1
		  AND ($2::text = '' OR (created_at, id) <= (
			SELECT created_at, id FROM messages WHERE id = $2
		  ))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, documentID, cursor, limit+1)
	if err != nil {
		return domain.MessagePage{}, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.DocumentID,
			&msg.UserID,
			&msg.Text,
			&msg.IsUserMessage,
			&msg.CreatedAt,
		); err != nil {
			return domain.MessagePage{}, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return domain.MessagePage{}, err
	}

	page := domain.MessagePage{Messages: messages}
	if len(messages) > limit {
		page.NextCursor = messages[limit].ID
		page.Messages = messages[:limit]
	}
	return page, nil
}
