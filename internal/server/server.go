package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/markmiedema/nexuscheck-sub005/internal/config"
	"github.com/markmiedema/nexuscheck-sub005/internal/db"
	"github.com/markmiedema/nexuscheck-sub005/internal/handlers"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/middleware"
	"github.com/markmiedema/nexuscheck-sub005/internal/services"
)

// Server owns the HTTP surface and its dependencies.
type Server struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	router *gin.Engine
	http   *http.Server
}

// New builds the full dependency graph: connection pool, store, services,
// handlers and routes.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Minute * 30
	poolConfig.MaxConnIdleTime = time.Minute * 15

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	store := db.NewStore(pool)
	common := handlers.NewCommonServices(store, logger.Log)
	nexusService := services.NewNexusService(store, cfg.Compute.MaxParallelJurisdictions)

	nexusHandler := handlers.NewNexusHandler(common, nexusService)
	healthHandler := handlers.NewHealthHandler()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(configureCORS())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware())

	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		analyses := v1.Group("/analyses")
		{
			analyses.POST("/:analysis_id/compute", nexusHandler.ComputeAnalysis)
			analyses.GET("/:analysis_id/results", nexusHandler.GetResults)
		}

		jurisdictions := v1.Group("/jurisdictions")
		{
			jurisdictions.GET("/:jurisdiction/rules", nexusHandler.GetJurisdictionRules)
		}
	}

	return &Server{
		cfg:    cfg,
		pool:   pool,
		router: router,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.App.Port),
			Handler: router,
		},
	}, nil
}

// Run starts the HTTP listener and blocks until it stops.
func (s *Server) Run() error {
	logger.Info("Server starting",
		zap.String("app", s.cfg.App.Name),
		zap.Int("port", s.cfg.App.Port),
		zap.String("stage", s.cfg.App.Stage))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.pool.Close()
	return err
}

// configureCORS returns a configured CORS middleware.
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Correlation-ID"}
	corsConfig.ExposeHeaders = []string{"X-Correlation-ID"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
