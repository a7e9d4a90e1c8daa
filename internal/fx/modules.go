package fx

import (
	"context"
	"database/sql"
	"ladder-tracker/internal/api"
	"ladder-tracker/internal/balance"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/db"
	"ladder-tracker/internal/events"
	"ladder-tracker/internal/logger"
	"ladder-tracker/internal/notifier"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/server"
	"ladder-tracker/internal/service"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// ProvideBus closes the bus when the application stops.
func ProvideBus(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (events.Bus, error) {
	bus, err := events.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			bus.Close()
			return nil
		},
	})
	return bus, nil
}

func ProvidePublisher(bus events.Bus) events.Publisher {
	return bus
}

func ProvideSubscriber(bus events.Bus) events.Subscriber {
	return bus
}

func ProvideBalancer() *balance.Balancer {
	return balance.New(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Core is everything below the HTTP layer. The admin CLI runs on it alone.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewRankRepository),
	fx.Provide(repository.NewMatchRepository),
	// api clients
	fx.Provide(fx.Annotate(api.NewHDevClient, fx.As(new(service.ValorantAPI)))),
	fx.Provide(fx.Annotate(api.NewBrawlerClient, fx.As(new(service.RivalsAPI)))),
	// events
	fx.Provide(ProvideBus),
	fx.Provide(ProvidePublisher),
	fx.Provide(ProvideSubscriber),
	// svc
	fx.Provide(ProvideBalancer),
	fx.Provide(service.NewRanker),
	fx.Provide(service.NewVerificationService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewRefreshService),
	fx.Provide(service.NewAdminService),
	fx.Provide(service.NewLeaderboardService),
)

var Module = fx.Options(
	Core,
	// discord
	fx.Provide(notifier.FromConfig),
	// server
	fx.Provide(server.NewLadderServer),
)
