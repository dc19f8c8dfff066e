package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"catalog/internal/logger"
	"catalog/internal/metrics"
	"catalog/internal/middleware"
	"catalog/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Handlers Handlers
	Tokens   middleware.TokenParser
	Users    repository.UserRepository
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
}

// echoを組み立てる。テストからもこれを使う
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// /api/products/ と /api/products を同じに扱う
	e.Pre(echomw.RemoveTrailingSlash())

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if opts.Logger != nil {
		e.Use(middleware.RequestLogger(opts.Logger))
	}
	if opts.Metrics != nil {
		e.Use(middleware.Metrics(opts.Metrics))
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	RegisterRoutes(e, opts.Handlers, opts.Tokens, opts.Users)
	return e
}

// ctxがキャンセルされるまで動かし、その後graceful shutdownする
func Run(ctx context.Context, e *echo.Echo, addr string, log *logger.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("server shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
