package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"calcosnqn/internal/cache"
	"calcosnqn/internal/config"
	custommiddleware "calcosnqn/internal/middleware"
	"calcosnqn/internal/repository"
	"calcosnqn/internal/service"
	"calcosnqn/internal/storage"
	"calcosnqn/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client

	AuthService service.AuthService
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	diskStorage, err := storage.NewDiskStorage(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Uploaded images are served straight from the storage directory.
	router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.Storage.Dir))))

	catalogCache := cache.NewCatalogCache(redisClient, logger)

	// Initialize repositories
	stickerRepo := repository.NewStickerRepository(db)
	tagRepo := repository.NewTagRepository(db)
	stickerTagRepo := repository.NewStickerTagRepository(db)
	adminUserRepo := repository.NewAdminUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Initialize services
	authService := service.NewAuthService(adminUserRepo, refreshTokenRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(stickerRepo, tagRepo, catalogCache, logger)
	stickerService := service.NewStickerService(
		stickerRepo, tagRepo, stickerTagRepo, diskStorage, catalogCache, logger)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	stickerHandler := transport.NewStickerHandler(catalogService, stickerService, logger)
	tagHandler := transport.NewTagHandler(catalogService, stickerService, logger)
	uploadHandler := transport.NewUploadHandler(diskStorage, cfg.Storage.Folder, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:api",
	}, logger)

	// Public routes get the rate limiter; admin routes are gated by auth.
	router.Group(func(r chi.Router) {
		r.Use(rateLimiter)
		authHandler.RegisterRoutes(r, authMiddleware)
		stickerHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
		tagHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
		uploadHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		AuthService: authService,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
