package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
	"doc-chat/internal/repository"
	"doc-chat/internal/service"
)

const maxPageLimit = 50

// ChatHandler mantiene dependencias para el envío en streaming y el historial
// paginado de mensajes.
type ChatHandler struct {
	logger    *zap.Logger
	documents *service.DocumentService
	chat      *service.ChatService
	messages  repository.MessageRepository
	limiter   service.SendRateLimiter
	pageLimit int
}

func NewChatHandler(
	logger *zap.Logger,
	documents *service.DocumentService,
	chat *service.ChatService,
	messages repository.MessageRepository,
	limiter service.SendRateLimiter,
	pageLimit int,
) *ChatHandler {
	if pageLimit <= 0 {
		pageLimit = 10
	}
	return &ChatHandler{
		logger:    logger,
		documents: documents,
		chat:      chat,
		messages:  messages,
		limiter:   limiter,
		pageLimit: pageLimit,
	}
}

// SendMessage maneja POST /documents/:id/message. La respuesta es un stream de
// chunks de texto plano; un status no exitoso significa que la respuesta ni
// siquiera empezó.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		h.logger.Error("get document failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}
	if err := h.documents.EnsureChatReady(doc); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "document not ready for chat"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(claims.UserID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages"})
		return
	}

	// A partir de acá el status ya salió; los errores solo cortan el stream.
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	_, err = h.chat.StreamReply(c.Request.Context(), claims.UserID, doc.ID, req.Message, func(chunk string) error {
		if _, werr := c.Writer.WriteString(chunk); werr != nil {
			return werr
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		h.logger.Error("stream reply failed", zap.Error(err), zap.String("document_id", doc.ID))
	}
}

// ListMessages maneja GET /documents/:id/messages con paginación por cursor,
// del mensaje más nuevo al más viejo.
func (h *ChatHandler) ListMessages(c *gin.Context) {
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}

	limit := h.pageLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}

	page, err := h.messages.ListByDocument(c.Request.Context(), doc.ID, limit, c.Query("cursor"))
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err), zap.String("document_id", doc.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}
	if page.Messages == nil {
		page.Messages = []domain.Message{}
	}

	c.JSON(http.StatusOK, page)
}
