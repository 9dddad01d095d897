package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"doc-chat/internal/config"
	"doc-chat/internal/db"
	apihttp "doc-chat/internal/http"
	"doc-chat/internal/llm"
	"doc-chat/internal/repository"
	"doc-chat/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	documentRepo := repository.NewPgDocumentRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	excerptRepo := repository.NewPgExcerptRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.EmbedModel, logger)

	var (
		sendLimiter service.SendRateLimiter = service.NewSendRateLimiter(time.Minute, 20)
		tokenStore  service.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			sendLimiter = service.NewRedisSendRateLimiter(redisClient, time.Minute, 20)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	if cfg.IngestKeyHash == "" {
		logger.Warn("ingest key not configured")
	}

	userSvc := service.NewUserService(logger, userRepo)
	documentSvc := service.NewDocumentService(logger, documentRepo, cfg.MaxDocumentPages)
	contextSvc := service.NewBasicContextService(messageRepo)
	retrievalSvc := service.NewRetrievalService(llmClient, excerptRepo)
	chatSvc := service.NewChatService(logger, llmClient, messageRepo, retrievalSvc, contextSvc)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	documentHandler := apihttp.NewDocumentHandler(logger, documentSvc)
	chatHandler := apihttp.NewChatHandler(logger, documentSvc, chatSvc, messageRepo, sendLimiter, cfg.MessagePageLimit)
	router := apihttp.NewRouter(logger, jwtSvc, cfg.IngestKeyHash, authHandler, documentHandler, chatHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
