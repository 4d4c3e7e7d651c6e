package service

import (
	"context"
	"fmt"

	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// withTx runs fn in a transaction, committing on success and rolling back on
// any error.
func withTx(ctx context.Context, repo repository.OrderRepository, logger zerolog.Logger, fn func(tx pgx.Tx) error) (err error) {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return err
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// mutateOrder locks the order, lets fn change it and writes it back when fn
// reports a change, all in one transaction.
func (s *orderService) mutateOrder(ctx context.Context, orderID string, fn func(tx pgx.Tx, o *model.Order) (bool, error)) (*model.Order, error) {
	var order *model.Order

	err := withTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
		o, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return model.NewOrderNotFoundError(orderID)
		}

		changed, err := fn(tx, o)
		if err != nil {
			return err
		}

		if changed {
			o.UpdatedAt = s.now()
			if err := s.orderRepo.UpdateOrder(ctx, tx, o); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
