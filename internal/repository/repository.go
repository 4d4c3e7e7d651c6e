package repository

import (
	"context"
	"time"

	"kebutuhan-pln/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository is the inventory gateway used by order submission.
type ProductRepository interface {
	// GetByIDs retrieves multiple products by their IDs. Missing IDs are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// DecrementStock subtracts qty from the product's stock only if enough is
	// left. It reports false when the condition did not hold.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) (bool, error)

	// GetStock reads the current stock level within the transaction.
	GetStock(ctx context.Context, tx pgx.Tx, productID string) (int, error)
}

// AddressRepository answers address book questions for order submission.
type AddressRepository interface {
	// IsActiveForUser reports whether the address belongs to the user and is active.
	IsActiveForUser(ctx context.Context, addressID, userID string) (bool, error)
}

// CartRepository clears carts once their content became an order.
type CartRepository interface {
	// Clear removes every item from the user's active cart.
	Clear(ctx context.Context, userID string) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetForUpdate loads an order and locks its row until the transaction ends.
	// It returns nil when the order does not exist.
	GetForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*model.Order, error)

	// UpdateOrder writes the whole aggregate back within the provided transaction.
	UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByOrderID retrieves an order with requester and delivery address.
	// It returns nil when the order does not exist.
	GetByOrderID(ctx context.Context, orderID string) (*model.OrderDetails, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.OrderDetails, error)

	// DeleteByOrderID removes an order and returns what was deleted, or nil
	// when nothing matched.
	DeleteByOrderID(ctx context.Context, orderID string) (*model.Order, error)

	// Stats aggregates the orders created during year, with month boundaries
	// taken in loc.
	Stats(ctx context.Context, year int, loc *time.Location) (*model.OrderStats, error)
}

// CounterRepository hands out delivery note sequence values.
type CounterRepository interface {
	// Next increments the bucket's counter and returns the new value. The
	// increment is part of tx, so a rollback gives the value back.
	Next(ctx context.Context, tx pgx.Tx, bucket string) (int, error)
}
