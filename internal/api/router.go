package api

import (
	"errors"
	"time"

	"storefront-recipes/internal/api/handlers/health"
	recipeHandler "storefront-recipes/internal/api/handlers/recipe"
	"storefront-recipes/internal/api/middleware"
	recipeService "storefront-recipes/internal/core/recipe"
	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 一般請求的超時；批次生成使用 server.write_timeout
const timeoutDuration = 120 * time.Second

// Dependencies 路由需要的服務
type Dependencies struct {
	// Primary 為 nil 時批次生成直接使用本地管線
	Primary   recipeService.Generator
	Fallback  recipeService.Generator
	OnDemand  recipeHandler.OnDemand
	Snapshots recipeService.SnapshotStore
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Fallback == nil || deps.OnDemand == nil || deps.Snapshots == nil {
		return nil, errors.New("router: fallback generator, on-demand generator and snapshot store are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 注入設定供健康檢查使用
	router.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck(deps.Snapshots))
	router.GET("/live", health.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := recipeHandler.NewHandler(deps.Primary, deps.Fallback, deps.OnDemand, deps.Snapshots)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	generationTimeout := cfg.Server.WriteTimeout
	if generationTimeout <= 0 {
		generationTimeout = 5 * time.Minute
	}

	api := router.Group("/api/v1")
	{
		recipes := api.Group("/recipes")

		// 排程與手動觸發共用同一協定
		trigger := recipes.Group("/generate-daily",
			middleware.RequireSecret(cfg.Cron.Secret),
			dedup.Middleware(),
			middleware.Timeout(generationTimeout),
		)
		{
			trigger.GET("", handler.HandleGenerateDaily)
			trigger.POST("", handler.HandleGenerateDaily)
			trigger.GET("/manual", handler.HandleGenerateDaily)
			trigger.POST("/manual", handler.HandleGenerateDaily)
		}

		public := recipes.Group("", middleware.Timeout(timeoutDuration))
		if cfg.RateLimit.Enabled {
			public.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		{
			public.POST("/generate", dedup.Middleware(), handler.HandleGenerate)
			public.GET("", handler.HandleList)
			public.GET("/:id", handler.HandleGet)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("delegate_configured", deps.Primary != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Duration("generation_timeout", generationTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
