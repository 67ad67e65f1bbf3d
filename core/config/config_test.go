package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/autowhitelist/core/config"
)

type retryConfig struct {
	Interval time.Duration `env:"CONFIG_TEST_RETRY_INTERVAL" envDefault:"5s"`
	Depth    int           `env:"CONFIG_TEST_DEPTH" envDefault:"256"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_SECRET_THAT_IS_NOT_SET,required"`
}

type cachedConfig struct {
	Name string `env:"CONFIG_TEST_CACHED_NAME"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults_and_overrides", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_DEPTH", "10")

		var cfg retryConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 5*time.Second, cfg.Interval)
		assert.Equal(t, 10, cfg.Depth)
	})

	t.Run("missing_required_value", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&requiredConfig{}) })
	})

	t.Run("values_are_cached_per_type", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_CACHED_NAME", "first")

		var a cachedConfig
		require.NoError(t, config.Load(&a))

		t.Setenv("CONFIG_TEST_CACHED_NAME", "second")

		var b cachedConfig
		require.NoError(t, config.Load(&b))
		assert.Equal(t, "first", b.Name)
	})
}
