package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/api/handlers"
	"github.com/jmpark/outageboard/internal/api/middleware"
	"github.com/jmpark/outageboard/internal/config"
)

type Server struct {
	Config  *config.Config
	Router  *gin.Engine
	handler *handlers.Handler
}

func NewServer(cfg *config.Config, handler *handlers.Handler, promRegistry *prometheus.Registry, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config:  cfg,
		Router:  router,
		handler: handler,
	}

	server.setupRoutes(promRegistry)
	return server
}

func (s *Server) setupRoutes(promRegistry *prometheus.Registry) {
	// Health checks
	s.Router.GET("/health", s.handler.Health)
	s.Router.GET("/ready", s.handler.Ready)

	// Prometheus scrape endpoint
	s.Router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	))

	// API routes (auth optional, see middleware.AuthRequired)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Server.JWTSecret))
	{
		api.GET("/regions", s.handler.ListRegions)
		api.GET("/regions/:region/snapshot", s.handler.GetSnapshot)
		api.GET("/regions/:region/services/:name", s.handler.GetService)
		api.GET("/regions/:region/services/:name/history", s.handler.GetServiceHistory)
		api.GET("/regions/:region/alarms", s.handler.GetAlarms)
		api.GET("/registry/:region", s.handler.GetRegistry)

		api.GET("/news", s.handler.SearchNews)
		api.GET("/geocode", s.handler.GeocodeLocation)
	}
}
