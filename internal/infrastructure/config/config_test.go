package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "recipes.json", cfg.Storage.Key)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 20, cfg.Pipeline.RandomCount)
	assert.Equal(t, 5, cfg.Pipeline.PerDietCount)
	assert.Equal(t, 30, cfg.Pipeline.MaxRecipes)
	assert.Equal(t, time.Second, cfg.Pipeline.DietDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pipeline.TranslatePause)
	assert.Equal(t, 5, cfg.Pipeline.TranslatePauseEvery)
	assert.Equal(t, []string{"vegano", "vegetariano", "keto", "sin-gluten", "sin-lactosa"}, cfg.Pipeline.Diets)
	assert.False(t, cfg.OpenRouter.Enabled())
}

func TestLoad_EnvBindings(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test-123456789")
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("PIPELINE_MAX_RECIPES", "12")
	t.Setenv("STORAGE_BACKEND", "gcs")
	t.Setenv("GCS_BUCKET", "recipes-bucket")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.OpenRouter.Enabled())
	assert.Equal(t, "s3cret", cfg.Cron.Secret)
	assert.Equal(t, 12, cfg.Pipeline.MaxRecipes)
	assert.Equal(t, "gcs", cfg.Storage.Backend)
	assert.Equal(t, "recipes-bucket", cfg.Storage.Bucket)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage backend", env: map[string]string{"STORAGE_BACKEND": "s3"}},
		{name: "gcs without bucket", env: map[string]string{"STORAGE_BACKEND": "gcs"}},
		{name: "redis cache without url", env: map[string]string{"CACHE_BACKEND": "redis"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "zero max recipes", env: map[string]string{"PIPELINE_MAX_RECIPES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New())
			assert.Error(t, err)
		})
	}
}
