package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
	"doc-chat/internal/repository"
	"doc-chat/internal/service"
)

// DocumentHandler mantiene dependencias para endpoints de documentos.
type DocumentHandler struct {
	logger    *zap.Logger
	documents *service.DocumentService
}

func NewDocumentHandler(logger *zap.Logger, documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{logger: logger, documents: documents}
}

// CreateDocument maneja POST /documents.
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create document request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	doc, err := h.documents.Register(c.Request.Context(), claims.UserID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrDocumentInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		h.logger.Error("create document failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create document"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// GetDocument maneja GET /documents/:id; es la consulta de estado que el
// cliente sondea mientras el documento se procesa.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		h.logger.Error("get document failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// ListDocuments maneja GET /documents.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	docs, err := h.documents.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list documents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list documents"})
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// ReportStatus maneja PATCH /documents/:id/status, el callback del pipeline de
// ingesta externo.
func (h *DocumentHandler) ReportStatus(c *gin.Context) {
	var req struct {
		Status    string `json:"status" binding:"required"`
		PageCount int    `json:"page_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	doc, err := h.documents.ReportStatus(c.Request.Context(), c.Param("id"), domain.DocumentStatus(req.Status), req.PageCount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		case errors.Is(err, service.ErrStatusFinal):
			c.JSON(http.StatusConflict, gin.H{"error": "status already terminal"})
		case errors.Is(err, repository.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		default:
			h.logger.Error("report status failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}
