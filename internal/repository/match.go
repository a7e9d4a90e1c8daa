package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/db"
	"ladder-tracker/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Create stores a pending match with its two rosters. An empty MatchID is assigned a uuid.
func (r *MatchRepository) Create(ctx context.Context, match *domain.MatchResult) error {
	if match.MatchID == "" {
		match.MatchID = uuid.NewString()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}
	match.Status = domain.MatchPending

	return database.InTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)
		if err := createMatch(ctx, qtx, match); err != nil {
			return err
		}
		return upsertRosters(ctx, qtx, match)
	})
}

// Record finalizes a match result with its stats and deltas. A pending match is completed
// in place, an unknown id is inserted as completed, and a completed match is left untouched
// with ErrConflict.
func (r *MatchRepository) Record(ctx context.Context, match *domain.MatchResult) error {
	if match.MatchID == "" {
		match.MatchID = uuid.NewString()
	}
	if match.ReportedAt.IsZero() {
		match.ReportedAt = time.Now().UTC()
	}

	err := database.InTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		existing, err := qtx.GetMatch(ctx, match.MatchID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if match.CreatedAt.IsZero() {
				match.CreatedAt = match.ReportedAt
			}
			match.Status = domain.MatchCompleted
			if err := createMatch(ctx, qtx, match); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to load match: %w", err)
		default:
			n, err := qtx.CompleteMatch(ctx, db.CompleteMatchParams{
				Winner:     string(match.Winner),
				ReportedAt: sql.NullTime{Time: match.ReportedAt, Valid: true},
				ID:         match.MatchID,
			})
			if err != nil {
				return fmt.Errorf("failed to complete match: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("match %s already reported: %w", match.MatchID, ErrConflict)
			}
			match.CreatedAt = existing.CreatedAt
			match.Status = domain.MatchCompleted
		}

		return upsertRosters(ctx, qtx, match)
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("match_id", match.MatchID).Msg("failed to record match")
		return err
	}
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.MatchResult, error) {
	row, err := r.queries.GetMatch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return r.withRosters(ctx, row)
}

func (r *MatchRepository) Recent(ctx context.Context, limit int) ([]domain.MatchResult, error) {
	rows, err := r.queries.ListRecentMatches(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	results := make([]domain.MatchResult, 0, len(rows))
	for _, row := range rows {
		m, err := r.withRosters(ctx, row)
		if err != nil {
			return nil, err
		}
		results = append(results, *m)
	}
	return results, nil
}

func (r *MatchRepository) withRosters(ctx context.Context, row db.Match) (*domain.MatchResult, error) {
	players, err := r.queries.ListMatchPlayers(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rosters for %s: %w", row.ID, err)
	}

	m := &domain.MatchResult{
		MatchID:        row.ID,
		Game:           domain.Game(row.Game),
		Status:         domain.MatchStatus(row.Status),
		Winner:         domain.TeamSide(row.Winner),
		PerPlayerStats: make(map[string]domain.MatchPlayerStats, len(players)),
		CreatedAt:      row.CreatedAt,
	}
	if row.ReportedAt.Valid {
		m.ReportedAt = row.ReportedAt.Time
	}

	for _, p := range players {
		if domain.TeamSide(p.Side) == domain.TeamA {
			m.TeamA = append(m.TeamA, p.PlayerID)
		} else {
			m.TeamB = append(m.TeamB, p.PlayerID)
		}
		m.PerPlayerStats[p.PlayerID] = domain.MatchPlayerStats{
			Kills:   int(p.Kills),
			Deaths:  int(p.Deaths),
			Assists: int(p.Assists),
			MVP:     p.Mvp,
		}
		if p.Delta.Valid {
			if m.Deltas == nil {
				m.Deltas = make(map[string]int)
			}
			m.Deltas[p.PlayerID] = int(p.Delta.Int64)
		}
	}
	return m, nil
}

func createMatch(ctx context.Context, qtx *db.Queries, match *domain.MatchResult) error {
	reported := sql.NullTime{}
	if match.Status == domain.MatchCompleted {
		reported = sql.NullTime{Time: match.ReportedAt, Valid: true}
	}

	err := qtx.CreateMatch(ctx, db.CreateMatchParams{
		ID:         match.MatchID,
		Game:       string(match.Game),
		Status:     string(match.Status),
		Winner:     string(match.Winner),
		CreatedAt:  match.CreatedAt,
		ReportedAt: reported,
	})
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func upsertRosters(ctx context.Context, qtx *db.Queries, match *domain.MatchResult) error {
	sides := []struct {
		side    domain.TeamSide
		players []string
	}{
		{domain.TeamA, match.TeamA},
		{domain.TeamB, match.TeamB},
	}

	for _, s := range sides {
		for i, id := range s.players {
			stats := match.PerPlayerStats[id]
			delta := sql.NullInt64{}
			if d, ok := match.Deltas[id]; ok {
				delta = sql.NullInt64{Int64: int64(d), Valid: true}
			}

			err := qtx.UpsertMatchPlayer(ctx, db.UpsertMatchPlayerParams{
				MatchID:  match.MatchID,
				PlayerID: id,
				Side:     string(s.side),
				Position: int64(i),
				Kills:    int64(stats.Kills),
				Deaths:   int64(stats.Deaths),
				Assists:  int64(stats.Assists),
				Mvp:      stats.MVP,
				Delta:    delta,
			})
			if err != nil {
				return fmt.Errorf("failed to store player %s for match %s: %w", id, match.MatchID, err)
			}
		}
	}
	return nil
}
