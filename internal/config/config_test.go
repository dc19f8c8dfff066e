package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "GO_ENV", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE",
	"JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	"REDIS_ADDR", "REDIS_PASSWORD", "PRODUCT_CACHE_TTL",
	"PRICING_MODE", "ORDER_STRICT_TRANSITIONS",
	"MAIL_HOST", "MAIL_PORT", "MAIL_USERNAME", "MAIL_PASSWORD", "MAIL_FROM",
}

// 手元の環境変数に左右されないよう全部空にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, config.PricingCurrent, cfg.PricingMode)
	assert.False(t, cfg.OrderStrictTransitions)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 587, cfg.MailPort)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=app sslmode=disable", cfg.PostgresDSN())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("PRICING_MODE", "snapshot")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.PostgresDSN())
	assert.Equal(t, config.PricingSnapshot, cfg.PricingMode)
	assert.True(t, cfg.OrderStrictTransitions)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"driver":       {"DB_DRIVER", "mysql"},
		"pricing":      {"PRICING_MODE", "cheapest"},
		"port":         {"POSTGRES_PORT", "abc"},
		"ttl":          {"ACCESS_TOKEN_TTL", "forever"},
		"strict":       {"ORDER_STRICT_TRANSITIONS", "maybe"},
		"prod w/o jwt": {"GO_ENV", "prod"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := config.FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenvは既にある変数を上書きしないので、ファイルから入れたいものは消しておく
	require.NoError(t, os.Unsetenv("PORT"))
	require.NoError(t, os.Unsetenv("PRICING_MODE"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nPRICING_MODE=snapshot\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PORT")
		_ = os.Unsetenv("PRICING_MODE")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.PricingSnapshot, cfg.PricingMode)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
