package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置（啟動時建立一次並注入各元件）
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	OpenRouter  OpenRouterConfig  `mapstructure:"openrouter"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Spoonacular SpoonacularConfig `mapstructure:"spoonacular"`
	Delegate    DelegateConfig    `mapstructure:"delegate"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Cron        CronConfig        `mapstructure:"cron"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error fatal"`
	LogMode     string            `mapstructure:"log_mode" validate:"omitempty,oneof=concise verbose"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name" validate:"required"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" validate:"min=1"`
}

// OpenRouterConfig OpenRouter 配置（未設定 api_key 時翻譯為直通模式）
type OpenRouterConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	Model     string        `mapstructure:"model" validate:"required"`
	MaxTokens int           `mapstructure:"max_tokens" validate:"min=1"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=1"`
	// 每秒允許的模型請求數
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
}

// Enabled 是否設定了模型憑證
func (c OpenRouterConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// CacheConfig 提示詞快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend" validate:"oneof=memory redis"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisURL        string        `mapstructure:"redis_url"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// CatalogConfig 商品目錄後端設定
type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	PublishableKey string        `mapstructure:"publishable_key"`
	RegionID       string        `mapstructure:"region_id"`
	PageSize       int           `mapstructure:"page_size" validate:"min=1,max=1000"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"min=1"`
}

// SpoonacularConfig 第三方食譜來源設定
type SpoonacularConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1"`
}

// DelegateConfig 遠端生成端點設定（URL 為空時直接使用本地管線）
type DelegateConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1"`
}

// StorageConfig 快照儲存設定
type StorageConfig struct {
	Backend    string `mapstructure:"backend" validate:"oneof=gcs redis badger"`
	Bucket     string `mapstructure:"bucket" validate:"required_if=Backend gcs"`
	Key        string `mapstructure:"key" validate:"required"`
	BadgerPath string `mapstructure:"badger_path" validate:"required_if=Backend badger"`
	RedisURL   string `mapstructure:"redis_url" validate:"required_if=Backend redis"`
}

// PipelineConfig 批次生成管線參數
type PipelineConfig struct {
	RandomCount         int           `mapstructure:"random_count" validate:"min=0,max=100"`
	PerDietCount        int           `mapstructure:"per_diet_count" validate:"min=1,max=100"`
	MaxRecipes          int           `mapstructure:"max_recipes" validate:"min=1"`
	Diets               []string      `mapstructure:"diets"`
	DietDelay           time.Duration `mapstructure:"diet_delay"`
	TranslatePauseEvery int           `mapstructure:"translate_pause_every" validate:"min=1"`
	TranslatePause      time.Duration `mapstructure:"translate_pause"`
}

// CronConfig 觸發端點共用密鑰
type CronConfig struct {
	Secret string `mapstructure:"secret"`
}

// LoadConfig 載入設定（.env 不存在時僅使用環境變數與預設值）
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(viper.New())
}

// Load 從指定的 viper 實例解析設定
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// bindEnv 綁定常用環境變數名稱
func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"openrouter.api_key":             "OPENROUTER_API_KEY",
		"openrouter.model":               "OPENROUTER_MODEL",
		"openrouter.max_tokens":          "MODEL_MAX_TOKENS",
		"cache.enabled":                  "CACHE_ENABLED",
		"cache.backend":                  "CACHE_BACKEND",
		"cache.redis_url":                "REDIS_URL",
		"rate_limit.enabled":             "RATE_LIMIT_ENABLED",
		"rate_limit.requests":            "RATE_LIMIT_REQUESTS",
		"rate_limit.window":              "RATE_LIMIT_WINDOW",
		"catalog.base_url":               "MEDUSA_BACKEND_URL",
		"catalog.publishable_key":        "MEDUSA_PUBLISHABLE_KEY",
		"catalog.region_id":              "MEDUSA_REGION_ID",
		"spoonacular.api_key":            "SPOONACULAR_API_KEY",
		"delegate.url":                   "DELEGATE_URL",
		"storage.backend":                "STORAGE_BACKEND",
		"storage.bucket":                 "GCS_BUCKET",
		"storage.badger_path":            "BADGER_PATH",
		"storage.redis_url":              "REDIS_URL",
		"cron.secret":                    "CRON_SECRET",
		"server.port":                    "PORT",
		"dedup_window":                   "DEDUP_WINDOW",
		"log_level":                      "LOG_LEVEL",
		"log_mode":                       "LOG_MODE",
		"pipeline.max_recipes":           "PIPELINE_MAX_RECIPES",
		"pipeline.translate_pause":       "PIPELINE_TRANSLATE_PAUSE",
		"openrouter.timeout":             "OPENROUTER_TIMEOUT",
		"openrouter.base_url":            "OPENROUTER_BASE_URL",
		"spoonacular.base_url":           "SPOONACULAR_BASE_URL",
		"pipeline.diet_delay":            "PIPELINE_DIET_DELAY",
		"openrouter.requests_per_second": "OPENROUTER_RPS",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "storefront-recipes")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m") // 批次生成可能耗時數分鐘
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 2*1024*1024)

	// OpenRouter 設定
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 2000)
	v.SetDefault("openrouter.timeout", "60s")
	v.SetDefault("openrouter.requests_per_second", 2)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 商品目錄
	v.SetDefault("catalog.base_url", "http://localhost:9000")
	v.SetDefault("catalog.page_size", 100)
	v.SetDefault("catalog.timeout", "15s")

	// 食譜來源
	v.SetDefault("spoonacular.base_url", "https://api.spoonacular.com")
	v.SetDefault("spoonacular.timeout", "20s")

	// 遠端生成
	v.SetDefault("delegate.timeout", "5m")

	// 儲存
	v.SetDefault("storage.backend", "badger")
	v.SetDefault("storage.key", "recipes.json")
	v.SetDefault("storage.badger_path", "data/badger")

	// 管線
	v.SetDefault("pipeline.random_count", 20)
	v.SetDefault("pipeline.per_diet_count", 5)
	v.SetDefault("pipeline.max_recipes", 30)
	v.SetDefault("pipeline.diets", []string{"vegano", "vegetariano", "keto", "sin-gluten", "sin-lactosa"})
	v.SetDefault("pipeline.diet_delay", "1s")
	v.SetDefault("pipeline.translate_pause_every", 5)
	v.SetDefault("pipeline.translate_pause", "1500ms")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
		if config.Cache.Backend == "redis" && config.Cache.RedisURL == "" {
			return fmt.Errorf("cache redis url is required for redis backend")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
