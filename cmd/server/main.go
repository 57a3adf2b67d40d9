package main

import (
	"log"
	"time"

	"go-chat-server/internal/api"
	"go-chat-server/internal/middleware"
	"go-chat-server/internal/repository"
	"go-chat-server/internal/service"
	"go-chat-server/internal/websocket"
	"go-chat-server/pkg/cache"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/db"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/storage"
	"go-chat-server/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.Production); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := db.InitDB(); err != nil {
		logger.L.Fatal("Failed to initialize database", zap.Error(err))
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.L.Fatal("Failed to initialize storage", zap.Error(err))
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(cfg.Redis)
		if err != nil {
			logger.L.Fatal("Failed to connect to redis", zap.Error(err))
		}
	}

	// Repositories.
	userRepo := repository.NewUserRepository()
	chatRepo := repository.NewChatRepository()
	memberRepo := repository.NewChatMemberRepository()
	msgRepo := repository.NewMessageRepository()
	statusRepo := repository.NewMessageStatusRepository()
	fileRepo := repository.NewFileRepository()

	// Presence reacts to connection lifecycle, so it exists before the
	// delivery router that feeds it.
	presenceTTL := time.Duration(cfg.Redis.PresenceTTLSeconds) * time.Second
	presenceService := service.NewPresenceService(userRepo, redisCache, presenceTTL)

	hub, err := websocket.CreateHub(presenceService)
	if err != nil {
		logger.L.Fatal("Failed to create hub", zap.Error(err))
	}
	if err := websocket.StartHub(hub); err != nil {
		logger.L.Fatal("Failed to start hub", zap.Error(err))
	}

	fileService := service.NewFileService(fileRepo, store)
	userService := service.NewUserService(userRepo, fileService, presenceService)
	chatService := service.NewChatService(chatRepo, memberRepo, userRepo, msgRepo, statusRepo, presenceService, hub)
	messageService := service.NewMessageService(msgRepo, statusRepo, memberRepo, userRepo, fileService, chatService, hub)
	authService := service.NewAuthService(userRepo, utils.NewTelegramAuthValidator(cfg.Telegram.BotToken))

	// Handlers.
	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService)
	chatHandler := api.NewChatHandler(chatService)
	messageHandler := api.NewMessageHandler(messageService)
	fileHandler := api.NewFileHandler(fileService)
	wsHandler := api.NewWSHandler(hub, messageService, chatService)

	if cfg.Log.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.GinZapLogger(), gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes.
	r.POST("/api/auth/telegram", authHandler.Login)
	r.POST("/api/auth/refresh", authHandler.Refresh)

	// The websocket handshake authenticates itself (header or query
	// token), the REST surface goes through the middleware.
	r.GET("/ws", wsHandler.HandleConnection)

	protected := r.Group("/api", middleware.AuthMiddleware())
	{
		protected.GET("/users/me", userHandler.Me)
		protected.PUT("/users/me", userHandler.UpdateProfile)
		protected.PUT("/users/me/avatar", userHandler.UpdateAvatar)
		protected.DELETE("/users/me", userHandler.Delete)
		protected.GET("/users", userHandler.Search)
		protected.GET("/users/:id/status", userHandler.Status)

		protected.POST("/chats/private", chatHandler.CreatePrivate)
		protected.POST("/chats/group", chatHandler.CreateGroup)
		protected.GET("/chats", chatHandler.List)
		protected.GET("/chats/:id/group", chatHandler.GroupDetails)
		protected.POST("/chats/:id/members", chatHandler.AddMembers)
		protected.DELETE("/chats/:id", chatHandler.Delete)

		protected.POST("/messages", messageHandler.Send)
		protected.GET("/chats/:id/messages", messageHandler.History)
		protected.PUT("/chats/:id/messages/:messageId", messageHandler.Edit)
		protected.DELETE("/chats/:id/messages", messageHandler.Delete)
		protected.POST("/chats/:id/messages/read", messageHandler.MarkRead)

		protected.POST("/files", fileHandler.Upload)
		protected.GET("/files/:hash", fileHandler.Download)
	}

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	logger.L.Info("Starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.L.Fatal("Failed to start server", zap.Error(err))
	}
}
