package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-recipes/internal/api"
	"storefront-recipes/internal/core/ai/cache"
	aiservice "storefront-recipes/internal/core/ai/service"
	"storefront-recipes/internal/core/recipe"
	"storefront-recipes/internal/core/service"
	"storefront-recipes/internal/infrastructure/catalog"
	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/infrastructure/delegate"
	"storefront-recipes/internal/infrastructure/spoonacular"
	"storefront-recipes/internal/infrastructure/storage"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.LogLevel,
		Mode:    cfg.LogMode,
		Service: cfg.App.Name,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("openrouter_credential", common.MaskSecret(cfg.OpenRouter.APIKey)),
		zap.Bool("translation_enabled", cfg.OpenRouter.Enabled()),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("delegate_configured", cfg.Delegate.URL != ""),
	)

	ctx := context.Background()

	// 提示詞快取
	promptCache, closeCache, err := openPromptCache(ctx, cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize prompt cache", zap.Error(err))
	}
	defer closeCache.Close()

	// 快照儲存
	blobs, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		common.LogFatal("Failed to open snapshot storage", zap.Error(err))
	}
	defer blobs.Close()
	snapshots := storage.NewSnapshotRepository(blobs, cfg.Storage.Key)

	// 模型與生成元件
	aiService := aiservice.NewService(cfg, service.NewOpenRouterService(cfg.OpenRouter), promptCache)
	translator := recipe.NewTranslator(aiService, cfg.OpenRouter.Enabled())
	pipeline := recipe.NewPipeline(cfg.Pipeline,
		catalog.NewClient(cfg.Catalog),
		spoonacular.NewClient(cfg.Spoonacular),
		translator,
		snapshots,
	)

	deps := api.Dependencies{
		Fallback:  recipe.NewLocalPipeline(pipeline),
		OnDemand:  recipe.NewOnDemandGenerator(aiService, cfg.OpenRouter.Enabled(), nil),
		Snapshots: snapshots,
	}
	if cfg.Delegate.URL != "" {
		deps.Primary = recipe.NewRemoteDelegate(delegate.NewClient(cfg.Delegate, cfg.Cron.Secret))
	}

	router, err := api.SetupRouter(cfg, deps)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogError("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openPromptCache 依設定建立提示詞快取；停用時回傳 nil 快取
func openPromptCache(ctx context.Context, cfg config.CacheConfig) (cache.PromptCache, io.Closer, error) {
	if !cfg.Enabled {
		return nil, nopCloser{}, nil
	}
	if cfg.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return rc, rc, nil
	}
	m := cache.NewManager(cfg)
	return m, m, nil
}
