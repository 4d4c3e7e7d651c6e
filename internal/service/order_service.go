package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"kebutuhan-pln/internal/attachment"
	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	cartRepo    repository.CartRepository
	counterRepo repository.CounterRepository
	attachments attachment.Store
	cfg         OrderServiceConfig
	policy      *bluemonday.Policy
	logger      zerolog.Logger

	now        func() time.Time
	newOrderID func() string
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	cartRepo repository.CartRepository,
	counterRepo repository.CounterRepository,
	attachments attachment.Store,
	cfg OrderServiceConfig,
	logger zerolog.Logger,
) OrderService {
	return newOrderService(orderRepo, productRepo, addressRepo, cartRepo, counterRepo, attachments, cfg, logger)
}

func newOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	cartRepo repository.CartRepository,
	counterRepo repository.CounterRepository,
	attachments attachment.Store,
	cfg OrderServiceConfig,
	logger zerolog.Logger,
) *orderService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NoteUnitCode == "" {
		cfg.NoteUnitCode = model.DefaultNoteUnitCode
	}

	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		cartRepo:    cartRepo,
		counterRepo: counterRepo,
		attachments: attachments,
		cfg:         cfg,
		policy:      bluemonday.StrictPolicy(),
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
		newOrderID: func() string {
			return model.OrderIDPrefix + ulid.Make().String()
		},
	}
}

// SubmitOrder checks the request against the address book and inventory, then
// decrements stock and inserts the order in one transaction.
func (s *orderService) SubmitOrder(ctx context.Context, actor model.Principal, req *model.OrderRequest) (*model.Order, error) {
	lines, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	ok, err := s.addressRepo.IsActiveForUser(ctx, req.AddressID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check delivery address: %w", err)
	}
	if !ok {
		s.logger.Warn().
			Str("user_id", actor.UserID).
			Str("address_id", req.AddressID).
			Msg("delivery address rejected")
		return nil, model.ErrInvalidAddress
	}

	productIDs := lo.Map(lines, func(l model.OrderItemRequest, _ int) string { return l.ProductID })
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	byID := lo.KeyBy(products, func(p model.Product) string { return p.ID })

	items := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		p, found := byID[l.ProductID]
		if !found {
			return nil, model.NewProductNotFoundError(l.ProductID)
		}
		if l.Quantity > p.Stock {
			s.logger.Warn().
				Str("product_id", p.ID).
				Int("requested", l.Quantity).
				Int("available", p.Stock).
				Msg("insufficient stock")
			return nil, model.NewInsufficientStockError(p.ID, p.Name, p.Stock)
		}
		items = append(items, model.OrderLine{
			ProductID:      p.ID,
			Quantity:       l.Quantity,
			ProductDetails: p.Snapshot(),
		})
	}

	now := s.now()
	order := &model.Order{
		ID:                uuid.New(),
		OrderID:           s.newOrderID(),
		RequesterID:       actor.UserID,
		DeliveryAddressID: req.AddressID,
		Items:             items,
		Status:            model.StatusSubmitted,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.RequestedBy != nil {
		order.DeliveryNote.Destination = s.clean(*req.RequestedBy)
	}

	// Stock rows are locked in product ID order so concurrent submissions
	// naming the same products cannot deadlock.
	lockOrder := slices.SortedFunc(slices.Values(lines), func(a, b model.OrderItemRequest) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})

	err = withTx(ctx, s.orderRepo, s.logger, func(tx pgx.Tx) error {
		for _, l := range lockOrder {
			ok, err := s.productRepo.DecrementStock(ctx, tx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if ok {
				continue
			}

			// Lost a race against another order since the stock check.
			available, err := s.productRepo.GetStock(ctx, tx, l.ProductID)
			if err != nil {
				return err
			}
			return model.NewInsufficientStockError(l.ProductID, byID[l.ProductID].Name, available)
		}

		return s.orderRepo.CreateOrder(ctx, tx, order)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to submit order")
		return nil, err
	}

	if err := s.cartRepo.Clear(ctx, actor.UserID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", actor.UserID).Msg("order stored but cart was not cleared")
	}

	s.logger.Info().
		Str("order_id", order.OrderID).
		Str("user_id", actor.UserID).
		Int("item_count", len(order.Items)).
		Msg("order submitted")

	return order, nil
}

// MyOrders lists the actor's own orders.
func (s *orderService) MyOrders(ctx context.Context, actor model.Principal) ([]model.OrderDetails, error) {
	orders, err := s.orderRepo.List(ctx, model.OrderFilter{RequesterID: actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// AllOrders lists every order for administrators.
func (s *orderService) AllOrders(ctx context.Context, actor model.Principal, status string) ([]model.OrderDetails, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	var filter model.OrderFilter
	if status != "" {
		st, err := model.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns an order to an administrator or to its requester.
func (s *orderService) GetOrder(ctx context.Context, actor model.Principal, orderID string) (*model.OrderDetails, error) {
	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (!actor.IsAdmin() && order.RequesterID != actor.UserID) {
		return nil, model.NewOrderNotFoundError(orderID)
	}
	return order, nil
}

// SetStatus applies a workflow transition under a row lock.
func (s *orderService) SetStatus(ctx context.Context, actor model.Principal, orderID, newStatus string) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	target, err := model.ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	order, err := s.mutateOrder(ctx, orderID, func(_ pgx.Tx, o *model.Order) (bool, error) {
		return o.TransitionTo(target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("status", string(order.Status)).
		Str("by", actor.UserID).
		Msg("order status updated")

	return order, nil
}

// DeleteOrder removes an order permanently.
func (s *orderService) DeleteOrder(ctx context.Context, actor model.Principal, orderID string) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	order, err := s.orderRepo.DeleteByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	if order == nil {
		return nil, model.NewOrderNotFoundError(orderID)
	}

	s.logger.Info().Str("order_id", orderID).Str("by", actor.UserID).Msg("order deleted")

	return order, nil
}

// validateOrderRequest checks line shape and merges repeated products.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) ([]model.OrderItemRequest, error) {
	if req == nil {
		return nil, model.ErrEmptyCart
	}

	lines := req.Lines()
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	for i, item := range lines {
		if item.ProductID == "" || item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid line item")
			return nil, model.ErrInvalidLineItem
		}
	}

	return model.MergeLines(lines), nil
}
