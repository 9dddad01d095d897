package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-chat/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	ingestKeyHash string,
	authH *AuthHandler,
	docH *DocumentHandler,
	chatH *ChatHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	auth := r.Group("/auth")
	auth.POST("/oauth", authH.OAuthLogin)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)

	docs := r.Group("/documents", JWTAuthMiddleware(jwtSvc))
	docs.POST("", docH.CreateDocument)
	docs.GET("", docH.ListDocuments)
	docs.GET("/:id", docH.GetDocument)
	docs.GET("/:id/messages", chatH.ListMessages)
	docs.POST("/:id/message", chatH.SendMessage)

	// Callback del pipeline de ingesta, autenticado por service key.
	r.PATCH("/documents/:id/status", IngestKeyMiddleware(ingestKeyHash), docH.ReportStatus)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
