package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address book adapter.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func (r *addressRepository) IsActiveForUser(ctx context.Context, addressID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM addresses
			WHERE id = $1 AND user_id = $2 AND status
		)
	`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, addressID, userID).Scan(&ok); err != nil {
		r.logger.Error().
			Err(err).
			Str("address_id", addressID).
			Str("user_id", userID).
			Msg("failed to check address")
		return false, fmt.Errorf("failed to check address: %w", err)
	}

	return ok, nil
}
