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
	"doc-chat/internal/repository"
)

var (
	ErrDocumentInvalidInput = errors.New("document invalid input")
	ErrDocumentNotReady     = errors.New("document not ready for chat")
	ErrInvalidStatus        = errors.New("invalid document status")
	ErrStatusFinal          = errors.New("document status already terminal")
)

// DocumentService coordina el registro de documentos y las transiciones de
// estado que reporta el pipeline de ingesta externo.
type DocumentService struct {
	logger   *zap.Logger
	docs     repository.DocumentRepository
	maxPages int
}

func NewDocumentService(logger *zap.Logger, docs repository.DocumentRepository, maxPages int) *DocumentService {
	if maxPages <= 0 {
		maxPages = 5
	}
	return &DocumentService{logger: logger, docs: docs, maxPages: maxPages}
}

// Register da de alta un documento en PENDING; el pipeline externo reporta el
// avance después.
func (s *DocumentService) Register(ctx context.Context, userID, name string) (domain.Document, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return domain.Document{}, ErrDocumentInvalidInput
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Status:    domain.DocumentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Get resuelve el documento solo si pertenece al usuario.
func (s *DocumentService) Get(ctx context.Context, id, userID string) (domain.Document, error) {
	return s.docs.GetByIDAndUser(ctx, id, userID)
}

func (s *DocumentService) List(ctx context.Context, userID string) ([]domain.Document, error) {
	return s.docs.ListByUser(ctx, userID)
}

// EnsureChatReady valida que el documento pueda recibir mensajes: solo READY
// habilita el chat, los estados terminales fallidos y los no terminales no.
func (s *DocumentService) EnsureChatReady(doc domain.Document) error {
	if doc.Status != domain.DocumentReady {
		return ErrDocumentNotReady
	}
	return nil
}

// ReportStatus aplica la transición reportada por el pipeline. Un documento con
// más páginas que el límite del plan se marca FAILED sin importar lo reportado.
// Los estados terminales no se mueven.
func (s *DocumentService) ReportStatus(ctx context.Context, id string, status domain.DocumentStatus, pageCount int) (domain.Document, error) {
	if !status.Valid() {
		return domain.Document{}, ErrInvalidStatus
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if doc.Status.Terminal() {
		return domain.Document{}, ErrStatusFinal
	}

	failReason := ""
	if pageCount > s.maxPages {
		status = domain.DocumentFailed
		failReason = fmt.Sprintf("document has %d pages, plan supports up to %d", pageCount, s.maxPages)
	} else if status == domain.DocumentFailed {
		failReason = "processing failed"
	}

	if err := s.docs.UpdateStatus(ctx, id, status, pageCount, failReason); err != nil {
		return domain.Document{}, err
	}

	s.logger.Info("document status updated",
		zap.String("document_id", id),
		zap.String("status", string(status)),
		zap.Int("page_count", pageCount),
	)

	doc.Status = status
	doc.PageCount = pageCount
	doc.FailReason = failReason
	doc.UpdatedAt = time.Now().UTC()
	return doc, nil
}
