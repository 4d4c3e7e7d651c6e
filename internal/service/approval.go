package service

import (
	"context"

	"kebutuhan-pln/internal/model"

	"github.com/jackc/pgx/v5"
)

// ApplyApprovals clamps and stores approved quantities under a row lock.
func (s *orderService) ApplyApprovals(ctx context.Context, actor model.Principal, orderID string, updates []model.ApprovalUpdate) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	var changed bool
	order, err := s.mutateOrder(ctx, orderID, func(_ pgx.Tx, o *model.Order) (bool, error) {
		var err error
		changed, err = o.ApplyApprovals(updates, s.cfg.AllowShippedApprovals)
		return changed, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID).
		Int("updates", len(updates)).
		Bool("changed", changed).
		Str("status", string(order.Status)).
		Msg("approved quantities applied")

	return order, nil
}
