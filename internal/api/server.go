package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedsync/internal/api/handlers"
	"feedsync/internal/api/middleware"
	"feedsync/internal/catalog/feed"
	"feedsync/internal/config"
	"feedsync/internal/database"
	"feedsync/internal/events"
	"feedsync/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	config    *config.Config
	logger    *logger.Logger
	db        *database.Database
	router    *gin.Engine
	server    *http.Server
	publisher *events.Publisher
	redis     *redis.Client
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.Warn("invalid REDIS_URL, feed caching disabled: %v", err)
	} else {
		rdb = redis.NewClient(opts)
	}

	assembler := feed.New(logger, feed.Options{
		Revalidate:  cfg.FeedRevalidate,
		DropInvalid: cfg.FeedDropInvalid,
	})

	// Initialize handlers
	shopHandler := handlers.NewShopHandler(db.DB, logger, publisher)
	productHandler := handlers.NewProductHandler(db.DB, logger, publisher)
	mappingHandler := handlers.NewMappingHandler(db.DB, logger, publisher)
	overrideHandler := handlers.NewOverrideHandler(db.DB, logger, publisher)
	issueHandler := handlers.NewIssueHandler(db.DB, logger)
	feedHandler := handlers.NewFeedHandler(db.DB, logger, rdb, assembler, time.Duration(cfg.FeedCacheTTL)*time.Second)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Shops
		shops := v1.Group("/shops")
		{
			shops.GET("", shopHandler.List)
			shops.GET("/:id", shopHandler.Get)
			shops.POST("", shopHandler.Create)
			shops.PUT("/:id/settings", shopHandler.UpdateSettings)
			shops.POST("/:id/sync", shopHandler.Sync)
			shops.POST("/:id/webhook", shopHandler.Webhook)
			shops.GET("/:id/mappings", mappingHandler.List)
			shops.PUT("/:id/mappings", mappingHandler.Replace)
			shops.GET("/:id/feed", feedHandler.GetJSON)
			shops.GET("/:id/feed.jsonl", feedHandler.GetJSONL)
		}

		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.GET("/:id/overrides", overrideHandler.List)
			products.PUT("/:id/overrides/:attribute", overrideHandler.Put)
			products.DELETE("/:id/overrides/:attribute", overrideHandler.Delete)
		}

		// Issues
		v1.GET("/issues", issueHandler.List)
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		db:        db,
		router:    router,
		publisher: publisher,
		redis:     rdb,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.publisher.Close(); err != nil {
		s.logger.Error("failed to close event publisher: %v", err)
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("failed to close redis client: %v", err)
		}
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router for serverless deployments.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
