package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MatchRecord captures the outcome of one match. Winner is empty when
// the match was abandoned before a decision.
type MatchRecord struct {
	RoomID    string
	Players   [2]string
	Winner    string
	Abandoned bool
	StartedAt time.Time
	EndedAt   time.Time
}

// MatchRepository persists match outcomes.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a match repository.
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// EnsureSchema creates the match_results table if it does not exist.
func (r *MatchRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_results (
			id         BIGSERIAL PRIMARY KEY,
			room_id    TEXT        NOT NULL,
			player_a   TEXT        NOT NULL,
			player_b   TEXT        NOT NULL,
			winner     TEXT        NOT NULL DEFAULT '',
			abandoned  BOOLEAN     NOT NULL DEFAULT FALSE,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at   TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure match_results schema: %w", err)
	}
	return nil
}

// RecordMatch inserts one finished or abandoned match.
func (r *MatchRepository) RecordMatch(ctx context.Context, rec MatchRecord) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO match_results (room_id, player_a, player_b, winner, abandoned, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.RoomID, rec.Players[0], rec.Players[1], rec.Winner, rec.Abandoned, rec.StartedAt, rec.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}

	r.db.logger.Debug("match recorded",
		zap.String("room_id", rec.RoomID),
		zap.String("winner", rec.Winner),
		zap.Bool("abandoned", rec.Abandoned),
	)
	return nil
}
