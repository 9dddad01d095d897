package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
	"doc-chat/internal/llm"
	"doc-chat/internal/repository"
)

var ErrChatInvalidInput = errors.New("chat invalid input")

// ChatService es el lado servidor de un envío: persiste el turno del usuario,
// arma el prompt con historial y fragmentos del documento, y transmite la
// respuesta del LLM por chunks. Al completar el stream persiste el mensaje del
// asistente completo.
type ChatService struct {
	logger     *zap.Logger
	llmClient  llm.LLMClient
	messages   repository.MessageRepository
	retrieval  ExcerptSearcher
	contextSvc ContextService
}

func NewChatService(
	logger *zap.Logger,
	llmClient llm.LLMClient,
	messages repository.MessageRepository,
	retrieval ExcerptSearcher,
	contextSvc ContextService,
) *ChatService {
	return &ChatService{
		logger:     logger,
		llmClient:  llmClient,
		messages:   messages,
		retrieval:  retrieval,
		contextSvc: contextSvc,
	}
}

// StreamReply entrega cada fragmento de la respuesta a onChunk en orden de
// llegada. Si onChunk devuelve error el stream se corta y no se persiste el
// mensaje del asistente.
func (s *ChatService) StreamReply(ctx context.Context, userID, documentID, question string, onChunk func(chunk string) error) (domain.Message, error) {
	userID = strings.TrimSpace(userID)
	documentID = strings.TrimSpace(documentID)
	question = strings.TrimSpace(question)
	if userID == "" || documentID == "" || question == "" {
		return domain.Message{}, ErrChatInvalidInput
	}

	userMsg := domain.Message{
		ID:            uuid.NewString(),
		DocumentID:    documentID,
		UserID:        userID,
		Text:          question,
		IsUserMessage: true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return domain.Message{}, fmt.Errorf("save user message: %w", err)
	}

	history := ""
	if s.contextSvc != nil {
		h, err := s.contextSvc.GetContext(ctx, documentID)
		if err != nil {
			s.logger.Warn("conversation context failed", zap.Error(err), zap.String("document_id", documentID))
		} else {
			history = h
		}
	}

	var excerpts []domain.DocumentExcerpt
	if s.retrieval != nil {
		found, err := s.retrieval.Search(ctx, documentID, question, 4)
		if err != nil {
			s.logger.Warn("excerpt search failed", zap.Error(err), zap.String("document_id", documentID))
		} else {
			excerpts = found
		}
	}

	var full strings.Builder
	err := s.llmClient.StreamChat(ctx, buildReplyMessages(history, excerpts, question), func(chunk string) error {
		full.WriteString(chunk)
		return onChunk(chunk)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("stream reply: %w", err)
	}

	assistantMsg := domain.Message{
		ID:            uuid.NewString(),
		DocumentID:    documentID,
		UserID:        userID,
		Text:          full.String(),
		IsUserMessage: false,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return domain.Message{}, fmt.Errorf("save assistant message: %w", err)
	}
	return assistantMsg, nil
}

func buildReplyMessages(history string, excerpts []domain.DocumentExcerpt, question string) []llm.ChatMessage {
	var b strings.Builder
	b.WriteString("Answer the user's question using the document excerpts below. ")
	b.WriteString("If the answer is not in the excerpts, say you don't know.\n")

	if len(excerpts) > 0 {
		b.WriteString("\nDOCUMENT EXCERPTS:\n")
		for _, e := range excerpts {
			fmt.Fprintf(&b, "[page %d] %s\n", e.Page, e.Content)
		}
	}
	if history != "" {
		b.WriteString("\nPREVIOUS CONVERSATION:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	return []llm.ChatMessage{
		{Role: "system", Content: b.String()},
		{Role: "user", Content: question},
	}
}
