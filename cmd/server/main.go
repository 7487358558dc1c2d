package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"telegram_rpg/internal/config"
	"telegram_rpg/internal/database"
	"telegram_rpg/internal/handler"
	"telegram_rpg/internal/middleware"
	"telegram_rpg/internal/repository"
	"telegram_rpg/internal/service"
	"telegram_rpg/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := database.NewPool(context.Background(), cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()
	appLogger.Info("Database connection established")

	// Применение схемы
	if err := database.Migrate(context.Background(), dbPool); err != nil {
		appLogger.Fatal("Failed to migrate database", "error", err)
	}

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев и сервисов
	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, cfg, appLogger)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Handlers
	handlers := handler.NewHandlers(services, cfg, appLogger)

	// Роутер
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	appLogger logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/telegram", rateLimitMiddleware.Limit("auth", cfg.RateLimit.AuthMax, cfg.RateLimit.AuthWindow), handlers.Auth.Telegram)
			auth.POST("/refresh", handlers.Auth.Refresh)
			auth.GET("/me", authMiddleware.RequireAuth(), handlers.Auth.Me)
		}

		// История чата и запасной путь отправки
		messages := v1.Group("/messages")
		{
			messages.GET("/location/:locationId", handlers.Message.History)
			messages.POST("", rateLimitMiddleware.Limit("messages", cfg.RateLimit.MessagesMax, cfg.RateLimit.MessagesWindow), handlers.Message.Create)
		}

		// Мир: локации открыты на чтение
		locations := v1.Group("/locations")
		{
			locations.GET("", handlers.Location.List)
			locations.GET("/:id", handlers.Location.GetByID)
			locations.POST("/:id/actions", authMiddleware.RequireAuth(), handlers.Location.PerformAction)
		}

		// Игроки
		players := v1.Group("/players")
		players.Use(authMiddleware.RequireAuth())
		{
			players.GET("/:id", handlers.Player.GetByID)
			players.GET("/:id/inventory", handlers.Player.Inventory)
			players.POST("/:id/experience", handlers.Player.AddExperience)
			players.POST("/:id/move", handlers.Player.Move)
		}
	}

	// Одноразовая инициализация мира (защита по токену)
	router.POST("/admin/init-db", handlers.Admin.InitDB)

	// WebSocket чата локаций
	router.GET("/ws/chat", handlers.WebSocket.HandleChat)

	return router
}
