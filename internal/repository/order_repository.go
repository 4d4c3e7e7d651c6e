package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kebutuhan-pln/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	o.id, o.order_id, o.requester_id, o.delivery_address_id,
	o.items, o.status, o.delivery_note, o.created_at, o.updated_at`

const orderDetailsQuery = `
	SELECT ` + orderColumns + `,
		u.id, u.name, u.email,
		a.id, a.address_line, a.city, a.state, a.pincode, a.country, a.mobile
	FROM orders o
	LEFT JOIN users u ON u.id = o.requester_id
	LEFT JOIN addresses a ON a.id = o.delivery_address_id`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	items, note, err := encodeOrder(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, order_id, requester_id, delivery_address_id, items, status, delivery_note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.OrderID,
		order.RequesterID,
		order.DeliveryAddressID,
		items,
		string(order.Status),
		note,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.OrderID).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return nil
}

// GetForUpdate loads an order and locks its row until the transaction ends.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.order_id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", orderID).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return order, nil
}

// UpdateOrder writes status, items and note of the aggregate.
func (r *orderRepository) UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	items, note, err := encodeOrder(order)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET items = $2, status = $3, delivery_note = $4, updated_at = $5
		WHERE order_id = $1
	`

	tag, err := tx.Exec(ctx, query, order.OrderID, items, string(order.Status), note, order.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewOrderNotFoundError(order.OrderID)
	}

	r.logger.Debug().
		Str("order_id", order.OrderID).
		Str("status", string(order.Status)).
		Msg("order updated successfully")

	return nil
}

// GetByOrderID retrieves an order with requester and delivery address.
func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*model.OrderDetails, error) {
	details, err := scanOrderDetails(r.pool.QueryRow(ctx, orderDetailsQuery+` WHERE o.order_id = $1`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", orderID).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return details, nil
}

// List retrieves orders matching the filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.OrderDetails, error) {
	var (
		where []string
		args  []any
	)
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		where = append(where, fmt.Sprintf("o.requester_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	query := orderDetailsQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("requester_id", filter.RequesterID).
			Str("status", string(filter.Status)).
			Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.OrderDetails{}
	for rows.Next() {
		d, err := scanOrderDetails(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// DeleteByOrderID removes an order and returns what was deleted.
func (r *orderRepository) DeleteByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	query := `DELETE FROM orders o WHERE o.order_id = $1 RETURNING ` + orderColumns

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to delete order")
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}

	r.logger.Info().Str("order_id", orderID).Msg("order deleted")

	return order, nil
}

// Stats aggregates orders created during year.
func (r *orderRepository) Stats(ctx context.Context, year int, loc *time.Location) (*model.OrderStats, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)

	stats := &model.OrderStats{
		Year:       year,
		ByStatus:   make(map[model.Status]int, len(model.Statuses())),
		ByCategory: []model.CategoryCount{},
		Monthly:    make([]model.MonthlyCount, 12),
	}
	for _, s := range model.Statuses() {
		stats.ByStatus[s] = 0
	}
	for i := range stats.Monthly {
		stats.Monthly[i].Month = i + 1
	}

	statusRows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status
	`, from, to)
	if err != nil {
		r.logger.Error().Err(err).Int("year", year).Msg("failed to count orders by status")
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for statusRows.Next() {
		var (
			status string
			count  int
		)
		if err := statusRows.Scan(&status, &count); err != nil {
			statusRows.Close()
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[model.Status(status)] = count
		stats.TotalOrders += count
	}
	statusRows.Close()
	if err := statusRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	categoryRows, err := r.pool.Query(ctx, `
		SELECT COALESCE(NULLIF(item->'product_details'->>'category', ''), 'Lainnya') AS category,
		       COUNT(*),
		       COALESCE(SUM((item->>'quantity')::int), 0)
		FROM orders o
		CROSS JOIN LATERAL jsonb_array_elements(o.items) AS item
		WHERE o.created_at >= $1 AND o.created_at < $2
		GROUP BY 1
		ORDER BY 2 DESC, 1
	`, from, to)
	if err != nil {
		r.logger.Error().Err(err).Int("year", year).Msg("failed to count orders by category")
		return nil, fmt.Errorf("failed to count orders by category: %w", err)
	}
	for categoryRows.Next() {
		var c model.CategoryCount
		if err := categoryRows.Scan(&c.Category, &c.Lines, &c.Quantity); err != nil {
			categoryRows.Close()
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, c)
	}
	categoryRows.Close()
	if err := categoryRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	monthRows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(MONTH FROM created_at AT TIME ZONE $3)::int, COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
	`, from, to, loc.String())
	if err != nil {
		r.logger.Error().Err(err).Int("year", year).Msg("failed to count orders by month")
		return nil, fmt.Errorf("failed to count orders by month: %w", err)
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var month, count int
		if err := monthRows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		if month >= 1 && month <= 12 {
			stats.Monthly[month-1].Orders = count
		}
	}
	if err := monthRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly counts: %w", err)
	}

	return stats, nil
}

func encodeOrder(order *model.Order) (items, note []byte, err error) {
	items, err = json.Marshal(order.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode order items: %w", err)
	}
	note, err = json.Marshal(order.DeliveryNote)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode delivery note: %w", err)
	}
	return items, note, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		status string
		items  []byte
		note   []byte
	)
	err := row.Scan(
		&o.ID,
		&o.OrderID,
		&o.RequesterID,
		&o.DeliveryAddressID,
		&items,
		&status,
		&note,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeOrder(&o, status, items, note); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderDetails(row pgx.Row) (*model.OrderDetails, error) {
	var (
		d      model.OrderDetails
		status string
		items  []byte
		note   []byte

		userID, userName, userEmail                        *string
		addrID, addrLine, city, state, pin, country, phone *string
	)
	err := row.Scan(
		&d.ID,
		&d.OrderID,
		&d.RequesterID,
		&d.DeliveryAddressID,
		&items,
		&status,
		&note,
		&d.CreatedAt,
		&d.UpdatedAt,
		&userID, &userName, &userEmail,
		&addrID, &addrLine, &city, &state, &pin, &country, &phone,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeOrder(&d.Order, status, items, note); err != nil {
		return nil, err
	}

	if userID != nil {
		d.Requester = &model.UserSummary{ID: *userID, Name: deref(userName), Email: deref(userEmail)}
	}
	if addrID != nil {
		d.DeliveryAddress = &model.Address{
			ID:          *addrID,
			AddressLine: deref(addrLine),
			City:        deref(city),
			State:       deref(state),
			Pincode:     deref(pin),
			Country:     deref(country),
			Mobile:      deref(phone),
		}
	}

	return &d, nil
}

func decodeOrder(o *model.Order, status string, items, note []byte) error {
	o.Status = model.Status(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(note, &o.DeliveryNote); err != nil {
		return fmt.Errorf("failed to decode delivery note: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
