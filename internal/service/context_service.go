package service

import (
	"context"
	"fmt"
	"strings"

	"doc-chat/internal/repository"
)

// ContextService define contrato para recuperar contexto conversacional.
type ContextService interface {
	GetContext(ctx context.Context, documentID string) (string, error)
}

// BasicContextService obtiene los últimos mensajes del documento y los formatea
// como texto plano, del más viejo al más nuevo.
type BasicContextService struct {
	messageRepo repository.MessageRepository
	limit       int
}

func NewBasicContextService(messageRepo repository.MessageRepository) *BasicContextService {
	return &BasicContextService{messageRepo: messageRepo, limit: 10}
}

func (s *BasicContextService) GetContext(ctx context.Context, documentID string) (string, error) {
	if strings.TrimSpace(documentID) == "" {
		return "", nil
	}

	page, err := s.messageRepo.ListByDocument(ctx, documentID, s.limit, "")
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	if len(page.Messages) == 0 {
		return "", nil
	}

	// La página viene del más nuevo al más viejo; el prompt va en orden cronológico.
	lines := make([]string, 0, len(page.Messages))
	for i := len(page.Messages) - 1; i >= 0; i-- {
		m := page.Messages[i]
		role := "Assistant"
		if m.IsUserMessage {
			role = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, m.Text))
	}

	return strings.Join(lines, "\n"), nil
}
