// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/license-server/internal/cache"
	"github.com/javajoker/license-server/internal/config"
	"github.com/javajoker/license-server/internal/handlers"
	"github.com/javajoker/license-server/internal/metrics"
	"github.com/javajoker/license-server/internal/middleware"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/services"
	"github.com/javajoker/license-server/internal/store"
	"github.com/javajoker/license-server/internal/utils"
)

// Options overrides collaborators that are otherwise built from config.
type Options struct {
	Gateway services.TokenGateway
	Catalog services.ProductCatalog
	Cache   cache.Cache
	Metrics metrics.Recorder
	Clock   services.Clock
}

// Initialize wires services and routes. ctx bounds background work such as
// rate limiter cleanup.
func Initialize(ctx context.Context, db, directoryDB *gorm.DB, cfg *config.Config, opts Options) *gin.Engine {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Init(cfg.Metrics.Enabled)
	}
	if opts.Clock == nil {
		opts.Clock = services.SystemClock
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Gateway == nil {
		opts.Gateway = services.NewHTTPTokenGateway(cfg.Licensing, opts.Metrics)
	}
	if opts.Catalog == nil {
		opts.Catalog = services.NewCachedCatalog(services.NewWooCommerceCatalog(cfg.Catalog), opts.Cache, cfg.Catalog.CacheTTL)
	}

	// Initialize services
	licenseStore := store.NewLicenseStore(db)
	directoryService := services.NewDirectoryService(directoryDB, cfg.Directory.TablePrefix)
	authService := services.NewAuthService(directoryService, cfg)
	poolService := services.NewLicensePoolService(licenseStore, opts.Catalog, opts.Clock, opts.Metrics)
	matcher := services.NewActivationMatcher(licenseStore, opts.Clock, cfg.Licensing.BindAttempts, opts.Metrics)
	entitlementService := services.NewEntitlementService(poolService, matcher, opts.Gateway, directoryService, services.EntitlementOptions{
		PrivilegedBypass: cfg.Licensing.PrivilegedBypass,
		Clock:            opts.Clock,
		Metrics:          opts.Metrics,
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	licenseHandler := handlers.NewLicenseHandler(entitlementService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	activationLimiter := middleware.PerMinute(cfg.RateLimit.ActivationsPerMinute, cfg.RateLimit.ActivationBurst)
	go activationLimiter.Run(ctx)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.HTTPMetricsMiddleware(opts.Metrics))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	authRequired := middleware.AuthRequired(authService)
	issuers := middleware.RolesRequired(models.RoleAdministrator, models.RoleManager)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", activationLimiter.Middleware(), authHandler.Login)
			auth.GET("/me", authRequired, authHandler.GetProfile)
		}

		// License routes
		licenses := v1.Group("/licenses")
		{
			licenses.GET("/manual-activation", authRequired, licenseHandler.ManualActivation)
			licenses.GET("/automatic-activation", activationLimiter.Middleware(), licenseHandler.AutomaticActivation)
			licenses.POST("", authRequired, issuers, licenseHandler.IssueLicenses)
			licenses.DELETE("", authRequired, issuers, licenseHandler.RemoveLicenses)
			licenses.GET("/:userId", authRequired, licenseHandler.GetUserLicenses)
		}
	}

	return r
}
