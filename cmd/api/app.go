package main

import (
	"context"

	"catalog/internal/config"
	"catalog/internal/handler"
	"catalog/internal/infra/auth"
	"catalog/internal/infra/cache"
	"catalog/internal/infra/db"
	"catalog/internal/infra/mail"
	infraRepo "catalog/internal/infra/repository"
	"catalog/internal/logger"
	"catalog/internal/metrics"
	"catalog/internal/server"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 起動に必要なものをまとめて持つ
type app struct {
	cfg   config.Config
	log   *logger.Logger
	db    *gorm.DB
	redis *redis.Client
	auth  *usecase.AuthUsecase
}

// 設定・ロガー・DBだけ用意する（migrate/createsuperuserはこれで足りる）
func boot() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		return nil, err
	}
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, db: gormDB}

	hooks := &usecase.Hooks{}
	hooks.OnUserCreated(usecase.WelcomeMailHook(a.mailer()))

	a.auth = usecase.NewAuthUsecase(
		infraRepo.NewUserGormRepository(gormDB),
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		hooks,
		log,
	)
	return a, nil
}

func (a *app) mailer() usecase.Mailer {
	if a.cfg.MailHost == "" {
		return mail.NewLogMailer(a.log)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     a.cfg.MailHost,
		Port:     a.cfg.MailPort,
		Username: a.cfg.MailUsername,
		Password: a.cfg.MailPassword,
		From:     a.cfg.MailFrom,
	})
}

// REDIS_ADDRが無ければキャッシュなしで動く
func (a *app) productCache(ctx context.Context) usecase.ProductListCache {
	if a.cfg.RedisAddr == "" {
		return nil
	}
	a.redis = cache.NewRedisClient(a.cfg.RedisAddr, a.cfg.RedisPassword)
	if err := a.redis.Ping(ctx).Err(); err != nil {
		a.log.Warn("redis unavailable, product list cache disabled", "addr", a.cfg.RedisAddr, "error", err)
		_ = a.redis.Close()
		a.redis = nil
		return nil
	}
	return cache.NewRedisProductCache(a.redis, usecase.ProductListCachePrefix)
}

// HTTPサーバーを組み立てる
func (a *app) httpServer(ctx context.Context) (*echo.Echo, error) {
	sqlDB, err := a.db.DB()
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	tx := infraRepo.NewTxManagerGorm(a.db)
	users := infraRepo.NewUserGormRepository(a.db)
	tokens := auth.NewJWTIssuer(a.cfg.JWTSecret, a.cfg.AccessTokenTTL, a.cfg.RefreshTokenTTL)

	hooks := &usecase.Hooks{}
	productCache := a.productCache(ctx)
	if productCache != nil {
		hooks.OnProductChanged(usecase.InvalidateProductListHook(productCache))
	}

	products := usecase.NewProductUsecase(usecase.ProductUsecaseDeps{
		Tx:       tx,
		Products: infraRepo.NewProductGormRepository(a.db),
		Cache:    productCache,
		CacheTTL: a.cfg.ProductCacheTTL,
		Hooks:    hooks,
		Logger:   a.log,
		Metrics:  m,
	})

	writer := usecase.NewOrderWriter(tx,
		usecase.WithStrictTransitions(a.cfg.OrderStrictTransitions),
		usecase.WithOrderLogger(a.log),
		usecase.WithOrderMetrics(m),
	)
	orders := usecase.NewOrderUsecase(tx, writer, a.cfg.PricingMode)
	audit := usecase.NewAuditUsecase(infraRepo.NewAuditLogGormRepository(a.db))

	return server.New(server.Options{
		Handlers: server.Handlers{
			Health:       handler.NewHealthHandler(sqlDB),
			Auth:         handler.NewAuthHandler(a.auth),
			Products:     handler.NewProductHandler(products),
			AdminProduct: handler.NewAdminProductHandler(products),
			Orders:       handler.NewOrderHandler(orders),
			AdminUser:    handler.NewAdminUserHandler(a.auth, audit),
		},
		Tokens:  tokens,
		Users:   users,
		Logger:  a.log,
		Metrics: m,
	}), nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.log.Sync()
}
