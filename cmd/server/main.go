package main

import (
	"context"
	"database/sql"
	"fmt"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/events"
	fxmodules "ladder-tracker/internal/fx"
	"ladder-tracker/internal/notifier"
	"ladder-tracker/internal/server"
	"ladder-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runWorkers),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	ladderServer *server.LadderServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: c.Handler(ladderServer.Router()),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// runWorkers starts the discord role sync consumer and the periodic valorant refresh.
func runWorkers(
	lc fx.Lifecycle,
	roles *notifier.RoleSyncer,
	sub events.Subscriber,
	refresh *service.RefreshService,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, 2)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() { done <- struct{}{} }()
				if err := roles.Run(ctx, sub); err != nil {
					logger.Error().Err(err).Msg("role sync stopped")
				}
			}()

			go func() {
				defer func() { done <- struct{}{} }()
				if cfg.RefreshInterval <= 0 {
					logger.Info().Msg("periodic valorant refresh disabled")
					return
				}
				ticker := time.NewTicker(cfg.RefreshInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if _, err := refresh.RefreshAll(ctx); err != nil {
							logger.Warn().Err(err).Msg("periodic refresh failed")
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			for i := 0; i < 2; i++ {
				select {
				case <-done:
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			}
			return nil
		},
	})
}
