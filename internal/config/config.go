package config

import (
	"fmt"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/rank"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	HDevAPIKey        string
	BrawlerAPIKey     string
	BrawlerAPIBaseURL string
	DBPath            string
	ServerPort        string
	LogLevel          string
	RankMode          rank.Mode
	PrimaryGame       domain.Game
	NATSURL           string
	DiscordBotToken   string
	DiscordGuildID    string
	// DiscordRankRoles maps canonical rank names to discord role ids.
	DiscordRankRoles   map[string]string
	UpstreamRateLimit  int
	UpstreamRateWindow time.Duration
	// RefreshInterval is how often linked valorant accounts are re-read; 0 disables it.
	RefreshInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	mode, err := rank.ParseMode(getEnv("RANK_MODE", string(rank.ModeHighest)))
	if err != nil {
		return nil, err
	}

	primary := domain.Game(getEnv("PRIMARY_GAME", string(domain.GameValorant)))
	if !primary.Valid() {
		return nil, fmt.Errorf("PRIMARY_GAME must be %q or %q", domain.GameValorant, domain.GameRivals)
	}

	limit, err := strconv.Atoi(getEnv("UPSTREAM_RATE_LIMIT", strconv.Itoa(constants.UpstreamRateLimit)))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_RATE_LIMIT: %w", err)
	}
	window, err := time.ParseDuration(getEnv("UPSTREAM_RATE_WINDOW", constants.UpstreamRateWindow.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_RATE_WINDOW: %w", err)
	}

	refresh, err := time.ParseDuration(getEnv("VALORANT_REFRESH_INTERVAL", constants.ValorantRefreshInterval.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid VALORANT_REFRESH_INTERVAL: %w", err)
	}

	roles, err := parseRoles(getEnv("DISCORD_RANK_ROLES", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HDevAPIKey:         getEnv("HDEV_API_KEY", ""),
		BrawlerAPIKey:      getEnv("BRAWLER_API_KEY", ""),
		BrawlerAPIBaseURL:  getEnv("BRAWLER_API_BASE_URL", "https://marvelrivalsapi.com/api/v1"),
		DBPath:             getEnv("DB_PATH", "ladder.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RankMode:           mode,
		PrimaryGame:        primary,
		NATSURL:            getEnv("NATS_URL", ""),
		DiscordBotToken:    getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordGuildID:     getEnv("DISCORD_GUILD_ID", ""),
		DiscordRankRoles:   roles,
		UpstreamRateLimit:  limit,
		UpstreamRateWindow: window,
		RefreshInterval:    refresh,
	}

	if cfg.HDevAPIKey == "" {
		return nil, fmt.Errorf("HDEV_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("rank_mode", string(cfg.RankMode)).
		Str("primary_game", string(cfg.PrimaryGame)).
		Bool("nats", cfg.NATSURL != "").
		Int("rank_roles", len(cfg.DiscordRankRoles)).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("configuration loaded")

	return cfg, nil
}

// parseRoles reads "GRNDS I=123,GRNDS II=456".
func parseRoles(s string) (map[string]string, error) {
	roles := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return roles, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, id, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid DISCORD_RANK_ROLES entry %q", pair)
		}
		t, ok := rank.ByName(name)
		if !ok {
			return nil, fmt.Errorf("DISCORD_RANK_ROLES: unknown rank %q", name)
		}
		roles[t.Name] = strings.TrimSpace(id)
	}
	return roles, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
