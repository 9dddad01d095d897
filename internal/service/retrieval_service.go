package service

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"doc-chat/internal/domain"
	"doc-chat/internal/llm"
	"doc-chat/internal/repository"
)

// ExcerptSearcher recupera fragmentos del documento relevantes a una pregunta.
type ExcerptSearcher interface {
	Search(ctx context.Context, documentID, question string, k int) ([]domain.DocumentExcerpt, error)
}

// RetrievalService embebe la pregunta y busca los fragmentos más cercanos. El
// índice lo escribe el pipeline de ingesta externo; acá solo se lee.
type RetrievalService struct {
	embedder llm.Embedder
	excerpts repository.ExcerptRepository
}

func NewRetrievalService(embedder llm.Embedder, excerpts repository.ExcerptRepository) *RetrievalService {
	return &RetrievalService{embedder: embedder, excerpts: excerpts}
}

func (s *RetrievalService) Search(ctx context.Context, documentID, question string, k int) ([]domain.DocumentExcerpt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, nil
	}

	embed, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	return s.excerpts.Search(ctx, documentID, pgvector.NewVector(embed), k)
}
