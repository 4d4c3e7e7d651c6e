// Package integration runs the HTTP API against a real PostgreSQL instance.
package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kebutuhan-pln/internal/config"
	"kebutuhan-pln/internal/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB starts PostgreSQL, opens the pool the way the server does and
// applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	pool, err := database.NewPool(ctx, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
	}
}

// SeedProduct inserts one catalog product.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, id, name, category string, stock int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"INSERT INTO products (id, name, category, stock) VALUES ($1, $2, $3, $4)",
		id, name, category, stock,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}
}

// SeedRequester inserts a user with an active address and a cart entry for
// productID, returning the user and address IDs.
func SeedRequester(t *testing.T, pool *pgxpool.Pool, productID string) (userID, addressID string) {
	t.Helper()

	ctx := context.Background()
	userID = gofakeit.UUID()
	addressID = gofakeit.UUID()

	statements := []struct {
		sql  string
		args []any
	}{
		{"INSERT INTO users (id, name, email) VALUES ($1, $2, $3)", []any{userID, gofakeit.Name(), gofakeit.Email()}},
		{"INSERT INTO addresses (id, user_id, address_line, city) VALUES ($1, $2, $3, $4)", []any{addressID, userID, gofakeit.Street(), "Bogor"}},
		{"INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, 1)", []any{userID, productID}},
	}
	for _, s := range statements {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			t.Fatalf("failed to seed requester: %v", err)
		}
	}

	return userID, addressID
}

// Stock returns the current stock of a product.
func Stock(t *testing.T, pool *pgxpool.Pool, productID string) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM products WHERE id = $1", productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock of %s: %v", productID, err)
	}
	return stock
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	tables := []string{"orders", "delivery_note_counters", "cart_items", "addresses", "users", "products"}
	for _, table := range tables {
		if _, err := pool.Exec(context.Background(), fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
