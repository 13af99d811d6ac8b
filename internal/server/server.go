// Package server is the SnackShop development API. It serves the REST contract the admin
// console talks to from a local SQLite database.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snackshop-dev/snackadmin/internal/auth"
	"github.com/snackshop-dev/snackadmin/internal/config"
	"github.com/snackshop-dev/snackadmin/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	db      *gorm.DB
	config  *config.Config
	logger  zerolog.Logger
	version string
	now     func() time.Time
}

// New opens the database, migrates it and creates a server
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, cfg, zlog, version)
}

// NewWithDB creates a server over an already opened database. Tests pass an in-memory one.
func NewWithDB(db *gorm.DB, cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	auth.InitializeJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.Seed {
		if err := models.Seed(db, auth.HashPassword, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		zlog.Info().Str("admin", models.SeedAdminEmail).Msg("Demo data available")
	}

	server := &Server{
		db:      db,
		config:  cfg,
		logger:  zlog,
		version: version,
		now:     time.Now,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300  // 5 minutes
		busyTimeout     = 5000 // 5 seconds
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.MaxMultipartMemory = 8 << 20

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Uploaded category images
	if s.config.HTTP.UploadDir != "" {
		s.router.Static("/uploads", s.config.HTTP.UploadDir)
	}

	// Public auth endpoints (no auth required)
	public := s.router.Group("/api")
	{
		public.POST("/auth/login", s.login)
		public.POST("/auth/forgot-password", s.forgotPassword)
		public.POST("/auth/reset-password", s.resetPassword)
	}

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		api.GET("/auth/me", s.getCurrentUser)
		api.POST("/auth/logout", s.logout)
		api.POST("/auth/change-password", s.changePassword)
		api.POST("/coupons/validate", s.validateCoupon)
	}

	// Admin console routes
	admin := api.Group("")
	admin.Use(AdminOnlyMiddleware(s.logger))
	{
		admin.PUT("/auth/users/:id/role", s.setUserRole)

		// Snacks
		admin.GET("/snacks", s.listSnacks)
		admin.POST("/snacks", s.createSnack)
		admin.GET("/snacks/category/:id", s.listSnacksByCategory)
		admin.GET("/snacks/:id", s.getSnack)
		admin.PUT("/snacks/:id", s.updateSnack)
		admin.DELETE("/snacks/:id", s.deleteSnack)
		admin.GET("/snack/search", s.searchSnacks)
		admin.GET("/snack/top-selling", s.topSellingSnacks)
		admin.GET("/snack/low-stock", s.lowStockSnacks)

		// Categories
		admin.GET("/categories", s.listCategories)
		admin.POST("/categories", s.createCategory)
		admin.GET("/categories/:id", s.getCategory)
		admin.PUT("/categories/:id", s.updateCategory)
		admin.DELETE("/categories/:id", s.deleteCategory)

		// Orders
		admin.GET("/orders/all", s.listOrders)
		admin.GET("/orders/statistics", s.orderStatistics)
		admin.GET("/orders/statistics/completed", s.completedStatistics)
		admin.GET("/orders/export", s.exportOrders)
		admin.GET("/orders/user/:id", s.listOrdersByUser)
		admin.GET("/orders/:id", s.getOrder)
		admin.PUT("/orders/:id", s.updateOrderStatus)
		admin.DELETE("/orders/:id", s.deleteOrder)
		admin.GET("/order/recent", s.recentOrders)

		// Coupons
		admin.GET("/coupons", s.listCoupons)
		admin.POST("/coupons", s.createCoupon)
		admin.GET("/coupons/:id", s.getCoupon)
		admin.PUT("/coupons/:id", s.updateCoupon)
		admin.DELETE("/coupons/:id", s.deleteCoupon)

		// Users
		admin.GET("/admin/users", s.listUsers)
		admin.GET("/admin/users/:id", s.getUser)
		admin.PUT("/admin/users/:id", s.updateUser)
		admin.DELETE("/admin/users/:id", s.deleteUser)
		admin.PUT("/admin/users/:id/status", s.setUserStatus)
		admin.POST("/admin/users/:id/reset-password", s.adminResetPassword)
		admin.POST("/user", s.createUser)
		admin.GET("/user/search", s.searchUsers)

		// Reviews
		admin.GET("/review", s.listReviews)
		admin.GET("/review/product/:id", s.listReviewsByProduct)
		admin.GET("/review/user/:id", s.listReviewsByUser)
		admin.PUT("/review/:id/status", s.setReviewStatus)
		admin.DELETE("/review/:id", s.deleteReview)

		// Search
		admin.GET("/search", s.search)
		admin.GET("/search/suggestions", s.searchSuggestions)

		// Dashboard
		admin.GET("/dashboard/stats", s.dashboardStats)
		admin.GET("/dashboard/revenue", s.dashboardRevenue)
		admin.GET("/dashboard/orders", s.dashboardOrders)
		admin.GET("/dashboard/products", s.dashboardProducts)
		admin.GET("/dashboard/users", s.dashboardUsers)
		admin.GET("/dashboard/export/:kind", s.dashboardExport)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetHeader(requestIDHeader)).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "snackshop-api",
		"version":   s.version,
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.config.HTTP.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Error().Err(err).Msg("HTTP server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
