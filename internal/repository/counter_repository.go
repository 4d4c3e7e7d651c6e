package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type counterRepository struct {
	logger zerolog.Logger
}

// NewCounterRepository creates a counter store backed by the
// delivery_note_counters table. It only works inside caller transactions.
func NewCounterRepository(logger zerolog.Logger) CounterRepository {
	return &counterRepository{
		logger: logger.With().Str("repository", "counter").Logger(),
	}
}

// Next increments the bucket's counter. Concurrent callers serialise on the
// bucket row, so every committed value is unique.
func (r *counterRepository) Next(ctx context.Context, tx pgx.Tx, bucket string) (int, error) {
	query := `
		INSERT INTO delivery_note_counters (bucket, value)
		VALUES ($1, 1)
		ON CONFLICT (bucket) DO UPDATE SET value = delivery_note_counters.value + 1
		RETURNING value
	`

	var value int
	if err := tx.QueryRow(ctx, query, bucket).Scan(&value); err != nil {
		r.logger.Error().Err(err).Str("bucket", bucket).Msg("failed to increment counter")
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	r.logger.Debug().Str("bucket", bucket).Int("value", value).Msg("counter incremented")

	return value, nil
}
