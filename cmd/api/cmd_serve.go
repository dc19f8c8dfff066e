package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/infra/db"
	"catalog/internal/server"

	"github.com/spf13/cobra"
)

var autoMigrate bool

// catalog serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.close()

		if autoMigrate {
			if err := db.Migrate(a.db); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := a.httpServer(ctx)
		if err != nil {
			return err
		}
		return server.Run(ctx, e, ":"+a.cfg.Port, a.log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run migrations before serving")
}
