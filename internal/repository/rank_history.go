package repository

import (
	"context"
	"database/sql"
	"fmt"
	"ladder-tracker/internal/db"
	"ladder-tracker/internal/domain"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// History lists the newest entries first. There is no update or delete path for history.
func (r *RankRepository) History(ctx context.Context, playerID string, limit int) ([]domain.RankHistoryEntry, error) {
	rows, err := r.queries.ListRankHistory(ctx, db.ListRankHistoryParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.RankHistoryEntry, len(rows))
	for i, h := range rows {
		result[i] = domain.RankHistoryEntry{
			ID:        h.ID,
			PlayerID:  h.PlayerID,
			Game:      domain.Game(h.Game),
			OldRank:   h.OldRank,
			NewRank:   h.NewRank,
			OldMMR:    int(h.OldMmr),
			NewMMR:    int(h.NewMmr),
			Reason:    domain.HistoryReason(h.Reason),
			MatchID:   h.MatchID.String,
			Timestamp: h.CreatedAt,
		}
	}
	return result, nil
}

func appendHistory(ctx context.Context, qtx *db.Queries, entry *domain.RankHistoryEntry, now time.Time) error {
	if entry.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		entry.ID = id
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	err := qtx.InsertRankHistory(ctx, db.InsertRankHistoryParams{
		ID:        entry.ID,
		PlayerID:  entry.PlayerID,
		Game:      string(entry.Game),
		OldRank:   entry.OldRank,
		NewRank:   entry.NewRank,
		OldMmr:    int64(entry.OldMMR),
		NewMmr:    int64(entry.NewMMR),
		Reason:    string(entry.Reason),
		MatchID:   sql.NullString{String: entry.MatchID, Valid: entry.MatchID != ""},
		CreatedAt: entry.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to append rank history: %w", err)
	}
	return nil
}
