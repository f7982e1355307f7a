package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"pubfeed/config"
	"pubfeed/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// corsMiddleware erlaubt den eingebetteten Widgets den Zugriff von beliebigen Origins.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, X-API-KEY")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	logging, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	// Setup Source
	ctx := context.Background()
	provider, err := services.NewProvider(ctx, cfg, logging)
	if err != nil {
		logging.Fatal("Bibliography source setup failed", zap.Error(err))
	}
	logging.Info("Bibliography source configured", zap.String("source", provider.Name()))

	// Setup Services
	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	publicationService := services.NewPublicationService(cfg, logging, provider, metrics)

	// Initiales Laden; ein Fehler hier ist nicht fatal, der nächste Request versucht es erneut.
	if count, err := publicationService.Refresh(ctx); err != nil {
		logging.Warn("Initial extraction failed", zap.Error(err))
	} else {
		logging.Info("Initial extraction completed", zap.Int("publications", count))
	}

	// Setup Router
	router := newRouter(cfg, publicationService, logging)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Cron
	if cfg.CacheWarmSchedule != "" {
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.CacheWarmSchedule, func() {
			logging.Info("Running scheduled cache refresh...")
			count, err := publicationService.Refresh(context.Background())
			if err != nil {
				logging.Error("Scheduled cache refresh failed", zap.Error(err))
				return
			}
			logging.Info("Scheduled cache refresh completed", zap.Int("publications", count))
		})
		if err != nil {
			logging.Fatal("Invalid CACHE_WARM_SCHEDULE", zap.String("schedule", cfg.CacheWarmSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, svc *services.PublicationService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	setupPublicationRoutes(router, cfg, svc, log)
	setupHealthRoutes(router, svc)
	return router
}

// queryInt liest einen ganzzahligen Query-Parameter; fehlende oder ungültige Werte ergeben 0.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func setupPublicationRoutes(router *gin.Engine, cfg *config.Config, svc *services.PublicationService, log *zap.Logger) {
	rg := router.Group("/api/publications")

	// Paginierte, filterbare Liste; Parameter wie die Widgets sie senden
	rg.GET("", func(c *gin.Context) {
		params := services.QueryParams{
			Page:      queryInt(c, "page"),
			Limit:     queryInt(c, "limit"),
			Sort:      c.Query("sort"),
			Direction: c.Query("direction"),
			Group:     c.Query("group"),
			Search:    c.Query("search"),
			Mode:      c.Query("mode"),
		}
		c.JSON(http.StatusOK, svc.Query(c.Request.Context(), params))
	})

	// Einzelne Publikation für Popup-Widgets
	rg.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		pub, found, err := svc.FindByID(c.Request.Context(), id)
		if err != nil {
			log.Error("Publication lookup failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publications unavailable"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"publication": pub,
			"reference":   services.FormatReference(pub),
		})
	})

	// Manueller Refresh, z.B. nach dem Hochladen einer neuen Bibliographie
	rg.POST("/refresh", apiKeyAuthMiddleware(cfg), func(c *gin.Context) {
		count, err := svc.Refresh(c.Request.Context())
		if err != nil {
			if services.IsErrorCode(err, services.CodeNoValidPublications) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No valid publications found", "code": string(services.CodeNoValidPublications)})
				return
			}
			log.Error("Manual refresh failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load bibliography"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "refreshed", "publications": count})
	})
}

func setupHealthRoutes(router *gin.Engine, svc *services.PublicationService) {
	router.GET("/health", func(c *gin.Context) {
		stats := svc.Stats()
		status := "healthy"
		if stats.Publications == 0 {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"service": "pubfeed",
			"cache":   stats,
		})
	})
}
