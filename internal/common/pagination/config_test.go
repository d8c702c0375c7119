package pagination_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/common/pagination"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := pagination.DefaultConfig()

	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 5, cfg.NormalMultiplier)
	assert.Equal(t, 10, cfg.BoostedMultiplier)
	assert.Equal(t, 10, cfg.IDBatchLimit)
	assert.Equal(t, 2, cfg.PrefetchDepth)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("with env vars set", func(t *testing.T) {
		t.Setenv("PAGINATION_PAGE_SIZE", "8")
		t.Setenv("PAGINATION_RAW_MULTIPLIER", "3")
		t.Setenv("PAGINATION_RAW_MULTIPLIER_BOOSTED", "6")
		t.Setenv("PAGINATION_PREFETCH_DEPTH", "1")

		cfg := pagination.LoadFromEnv()

		assert.Equal(t, 8, cfg.PageSize)
		assert.Equal(t, 3, cfg.NormalMultiplier)
		assert.Equal(t, 6, cfg.BoostedMultiplier)
		assert.Equal(t, 10, cfg.IDBatchLimit)
		assert.Equal(t, 1, cfg.PrefetchDepth)
	})

	t.Run("with no env vars", func(t *testing.T) {
		cfg := pagination.LoadFromEnv()
		assert.Equal(t, pagination.DefaultConfig(), cfg)
	})

	t.Run("with invalid env vars (fallback to defaults)", func(t *testing.T) {
		t.Setenv("PAGINATION_PAGE_SIZE", "abc")

		cfg := pagination.LoadFromEnv()
		assert.Equal(t, pagination.DefaultConfig(), cfg)
	})

	t.Run("with values that fail validation", func(t *testing.T) {
		t.Setenv("PAGINATION_RAW_MULTIPLIER", "12")

		cfg := pagination.LoadFromEnv()
		assert.Equal(t, pagination.DefaultConfig(), cfg)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*pagination.Config)
	}{
		{name: "zero page size", mutate: func(c *pagination.Config) { c.PageSize = 0 }},
		{name: "huge page size", mutate: func(c *pagination.Config) { c.PageSize = 1000 }},
		{name: "zero multiplier", mutate: func(c *pagination.Config) { c.NormalMultiplier = 0 }},
		{name: "boosted below normal", mutate: func(c *pagination.Config) { c.BoostedMultiplier = 2 }},
		{name: "zero id batch", mutate: func(c *pagination.Config) { c.IDBatchLimit = 0 }},
		{name: "negative prefetch", mutate: func(c *pagination.Config) { c.PrefetchDepth = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := pagination.DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Policy(t *testing.T) {
	t.Run("uniform without file", func(t *testing.T) {
		p, err := pagination.DefaultConfig().Policy()
		require.NoError(t, err)
		assert.Equal(t, 25, p.BatchSize("likes", 5, false))
		assert.Equal(t, 50, p.BatchSize("likes", 5, true))
	})

	t.Run("file overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overscan.yaml")
		require.NoError(t, os.WriteFile(path, []byte("categories:\n  comments:\n    normal: 8\n"), 0o600))

		cfg := pagination.DefaultConfig()
		cfg.OverscanFile = path
		p, err := cfg.Policy()
		require.NoError(t, err)
		assert.Equal(t, pagination.Overscan{Normal: 8, Boosted: 10}, p.For("comments"))
		assert.Equal(t, pagination.Overscan{Normal: 5, Boosted: 10}, p.For("written"))
	})
}
