package domain

import "time"

type Message struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	Text          string    `json:"text"`
	IsUserMessage bool      `json:"is_user_message"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessagePage es una página de mensajes ordenados del más nuevo al más viejo.
// NextCursor queda vacío cuando no hay más páginas.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
