package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GodwinAdu/campus-forum/internal/api"
	"github.com/GodwinAdu/campus-forum/internal/config"
	"github.com/GodwinAdu/campus-forum/internal/db"
	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/GodwinAdu/campus-forum/internal/middleware"
	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/GodwinAdu/campus-forum/internal/observ"
	"github.com/GodwinAdu/campus-forum/internal/realtime"
	"github.com/GodwinAdu/campus-forum/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no request deadline; "take as long as you need to
	// connect" is the right behavior here.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Repositories. Assigning concrete stores straight into the service
	// constructors proves at compile time that each store satisfies its
	// repository interface.
	pool := database.Pool()
	serverRepo := postgres.NewServerStore(pool)
	memberRepo := postgres.NewMemberStore(pool)
	channelRepo := postgres.NewChannelStore(pool)
	conversationRepo := postgres.NewConversationStore(pool)
	messageRepo := postgres.NewMessageStore(pool)
	userRepo := postgres.NewUserStore(pool)
	tenantRepo := postgres.NewTenantStore(pool)

	// Realtime: one hub per instance, bridged across instances by the
	// Redis bus. The bus doubles as the services' event publisher.
	hub := realtime.NewHub(logger)
	bus := realtime.NewBus(rdb, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := bus.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("realtime bus stopped", zap.Error(err))
		}
	}()

	// Services.
	serverSvc := forum.NewServerService(serverRepo, memberRepo, channelRepo, logger)
	conversationSvc := forum.NewConversationService(conversationRepo, memberRepo, logger)
	messageSvc := forum.NewMessageService(messageRepo, channelRepo, conversationRepo, memberRepo, bus, logger)

	// Handlers.
	authHandler := api.NewAuthHandler(userRepo, tenantRepo, cfg.JWTSecret, logger)
	userHandler := api.NewUserHandler(userRepo, logger)
	serverHandler := api.NewServerHandler(serverSvc, logger)
	membershipHandler := api.NewMembershipHandler(serverSvc, logger)
	channelHandler := api.NewChannelHandler(serverSvc, logger)
	conversationHandler := api.NewConversationHandler(conversationSvc, logger)
	messageHandler := api.NewMessageHandler(messageSvc, logger)
	wsHandler := api.NewWSHandler(hub, messageSvc.AuthorizeRoom, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	// Health check stays public so load balancers can probe it.
	srv.GET("/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	srv.POST("/v1/auth/signup", authHandler.Signup)
	srv.POST("/v1/auth/login", authHandler.Login)

	// Everything else requires a valid JWT.
	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	v1.GET("/users/me", userHandler.GetMe)

	v1.POST("/servers", serverHandler.Create)
	v1.GET("/servers", serverHandler.List)
	v1.GET("/servers/:id", serverHandler.Get)
	v1.PATCH("/servers/:id", serverHandler.Update)
	v1.DELETE("/servers/:id", serverHandler.Delete)
	v1.POST("/servers/:id/invite-code", serverHandler.ResetInviteCode)
	v1.POST("/servers/join/:code", serverHandler.Join)
	v1.GET("/servers/:id/default-channel", serverHandler.DefaultChannel)

	v1.POST("/servers/:id/leave", membershipHandler.Leave)
	v1.DELETE("/servers/:id/members/:memberID", membershipHandler.Kick)
	v1.PATCH("/servers/:id/members/:memberID", membershipHandler.UpdateRole)

	v1.POST("/servers/:id/channels", channelHandler.Create)
	v1.PATCH("/channels/:id", channelHandler.Update)
	v1.DELETE("/channels/:id", channelHandler.Delete)

	v1.POST("/conversations", conversationHandler.GetOrCreate)

	v1.POST("/channels/:id/messages", messageHandler.Post(models.ParentChannel))
	v1.GET("/channels/:id/messages", messageHandler.List(models.ParentChannel))
	v1.PATCH("/channels/:id/messages/:messageID", messageHandler.Edit(models.ParentChannel))
	v1.DELETE("/channels/:id/messages/:messageID", messageHandler.Delete(models.ParentChannel))

	v1.POST("/conversations/:id/messages", messageHandler.Post(models.ParentConversation))
	v1.GET("/conversations/:id/messages", messageHandler.List(models.ParentConversation))
	v1.PATCH("/conversations/:id/messages/:messageID", messageHandler.Edit(models.ParentConversation))
	v1.DELETE("/conversations/:id/messages/:messageID", messageHandler.Delete(models.ParentConversation))

	v1.GET("/ws", wsHandler.Connect)

	logger.Info("starting campus-forum",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
