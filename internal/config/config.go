package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 小計の計算に使う単価
const (
	PricingCurrent  = "current"  // 読み出し時点の商品価格
	PricingSnapshot = "snapshot" // 明細作成時点の価格
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	DBDriver    string // postgres / sqlite
	DatabaseURL string // あれば最優先
	SQLitePath  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr       string // 空ならキャッシュ無効
	RedisPassword   string
	ProductCacheTTL time.Duration

	PricingMode            string
	OrderStrictTransitions bool

	MailHost     string // 空ならメールはログに出すだけ
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

// Loadは.env（あれば）を読んでから環境変数を読む
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnvは環境変数だけからConfigを作る
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "catalog.db"),

		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		PricingMode: strings.ToLower(getenv("PRICING_MODE", PricingCurrent)),

		MailHost:     os.Getenv("MAIL_HOST"),
		MailUsername: os.Getenv("MAIL_USERNAME"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "admin@example.com"),
	}

	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.MailPort, err = atoiDefault("MAIL_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = durationDefault("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = durationDefault("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ProductCacheTTL, err = durationDefault("PRODUCT_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.OrderStrictTransitions, err = boolDefault("ORDER_STRICT_TRANSITIONS", false); err != nil {
		return Config{}, err
	}

	//必須チェック
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite: %q", cfg.DBDriver)
	}
	switch cfg.PricingMode {
	case PricingCurrent, PricingSnapshot:
	default:
		return Config{}, fmt.Errorf("PRICING_MODE must be current or snapshot: %q", cfg.PricingMode)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev_secret_change_me"
	}

	return cfg, nil
}

// PostgresDSNはDATABASE_URLがなければPOSTGRES_*から組み立てる
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
