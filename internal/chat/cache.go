package chat

import (
	"time"

	"doc-chat/internal/domain"
)

// PendingAssistantID identifica al único mensaje mutable que representa la
// respuesta del asistente mientras todavía está llegando por el stream.
const PendingAssistantID = "ai-response"

// Cache guarda las páginas de mensajes de un documento, de la más nueva a la
// más vieja. Las mutaciones pasan por transformaciones puras sobre las páginas
// para poder probarlas sin runtime de UI.
type Cache struct {
	pages []domain.MessagePage
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Pages() []domain.MessagePage {
	return c.pages
}

// Messages aplana las páginas en una sola lista, de la más nueva a la más vieja.
func (c *Cache) Messages() []domain.Message {
	var out []domain.Message
	for _, p := range c.pages {
		out = append(out, p.Messages...)
	}
	return out
}

// Snapshot devuelve una copia profunda de las páginas para un rollback posterior.
func (c *Cache) Snapshot() []domain.MessagePage {
	snap := make([]domain.MessagePage, len(c.pages))
	for i, p := range c.pages {
		msgs := make([]domain.Message, len(p.Messages))
		copy(msgs, p.Messages)
		snap[i] = domain.MessagePage{Messages: msgs, NextCursor: p.NextCursor}
	}
	return snap
}

// Restore reemplaza todas las páginas por un snapshot previo.
func (c *Cache) Restore(pages []domain.MessagePage) {
	c.pages = pages
}

// Apply aplica una transformación pura páginas -> páginas.
func (c *Cache) Apply(transform func([]domain.MessagePage) []domain.MessagePage) {
	c.pages = transform(c.pages)
}

func (c *Cache) AppendPage(page domain.MessagePage) {
	c.pages = append(c.pages, page)
}

func (c *Cache) Reset() {
	c.pages = nil
}

// WithUserMessage antepone el mensaje del usuario a la página 0 sin mutar la
// entrada. Si el cache no tiene páginas todavía, sintetiza una.
func WithUserMessage(pages []domain.MessagePage, msg domain.Message) []domain.MessagePage {
	if len(pages) == 0 {
		return []domain.MessagePage{{Messages: []domain.Message{msg}}}
	}
	out := make([]domain.MessagePage, len(pages))
	copy(out, pages)

	first := out[0]
	msgs := make([]domain.Message, 0, len(first.Messages)+1)
	msgs = append(msgs, msg)
	msgs = append(msgs, first.Messages...)
	out[0] = domain.MessagePage{Messages: msgs, NextCursor: first.NextCursor}
	return out
}

// WithPendingAssistantText inserta el mensaje centinela del asistente al frente
// de la página 0 si todavía no existe, o actualiza su texto con el acumulado.
// Invariante: a lo sumo un mensaje con PendingAssistantID en todo el cache.
func WithPendingAssistantText(pages []domain.MessagePage, accumulated string, now time.Time) []domain.MessagePage {
	if len(pages) == 0 {
		return []domain.MessagePage{{Messages: []domain.Message{pendingAssistantMessage(accumulated, now)}}}
	}

	created := false
	for _, p := range pages {
		for _, m := range p.Messages {
			if m.ID == PendingAssistantID {
				created = true
			}
		}
	}

	out := make([]domain.MessagePage, len(pages))
	copy(out, pages)
	first := out[0]

	var msgs []domain.Message
	if !created {
		msgs = make([]domain.Message, 0, len(first.Messages)+1)
		msgs = append(msgs, pendingAssistantMessage(accumulated, now))
		msgs = append(msgs, first.Messages...)
	} else {
		msgs = make([]domain.Message, len(first.Messages))
		for i, m := range first.Messages {
			if m.ID == PendingAssistantID {
				m.Text = accumulated
			}
			msgs[i] = m
		}
	}
	out[0] = domain.MessagePage{Messages: msgs, NextCursor: first.NextCursor}
	return out
}

func pendingAssistantMessage(text string, now time.Time) domain.Message {
	return domain.Message{
		ID:            PendingAssistantID,
		Text:          text,
		IsUserMessage: false,
		CreatedAt:     now,
	}
}
