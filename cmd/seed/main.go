// Command seed fills a development database with a material catalog and a few
// requesters that have an address and a populated cart.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kebutuhan-pln/internal/config"
	"kebutuhan-pln/internal/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type catalogEntry struct {
	id, name, category string
}

var catalog = []catalogEntry{
	{"MAT-001", "Kabel NYY 4x16 mm", "Material"},
	{"MAT-002", "Kabel NYFGbY 3x2.5 mm", "Material"},
	{"MAT-003", "Isolator Tumpu 20 kV", "Material"},
	{"MAT-004", "Konektor Press CCO", "Material"},
	{"PRL-001", "Multimeter Digital", "Peralatan"},
	{"PRL-002", "Tang Ampere", "Peralatan"},
	{"PRL-003", "Tangga Fiber 6 m", "Peralatan"},
	{"K3-001", "Helm Safety", "K3"},
	{"K3-002", "Sarung Tangan 20 kV", "K3"},
	{"K3-003", "Sepatu Safety", "K3"},
	{"ATK-001", "Kertas HVS A4", "ATK"},
	{"ATK-002", "Map Ordner", "ATK"},
}

func main() {
	users := flag.Int("users", 5, "number of requesters to create")
	maxStock := flag.Int("max-stock", 50, "upper bound for generated stock")
	seed := flag.Uint64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger, "kebutuhan-seed")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	faker := gofakeit.New(*seed)
	if err := seedCatalog(ctx, pool, faker, *maxStock); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed catalog")
	}
	if err := seedRequesters(ctx, pool, faker, *users, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed requesters")
	}

	logger.Info().Int("products", len(catalog)).Int("users", *users).Msg("seed complete")
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, maxStock int) error {
	batch := &pgx.Batch{}
	for _, p := range catalog {
		batch.Queue(`
			INSERT INTO products (id, name, category, stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET stock = EXCLUDED.stock`,
			p.id, p.name, p.category, faker.IntRange(0, maxStock),
		)
	}
	return pool.SendBatch(ctx, batch).Close()
}

func seedRequesters(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, n int, logger zerolog.Logger) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i := 0; i < n; i++ {
			userID := faker.UUID()
			addressID := faker.UUID()
			if _, err := tx.Exec(ctx,
				"INSERT INTO users (id, name, email) VALUES ($1, $2, $3)",
				userID, faker.Name(), faker.Email(),
			); err != nil {
				return fmt.Errorf("failed to insert user: %w", err)
			}

			if _, err := tx.Exec(ctx,
				"INSERT INTO addresses (id, user_id, address_line, city, state, mobile) VALUES ($1, $2, $3, $4, $5, $6)",
				addressID, userID, faker.Street(), "Bogor", "Jawa Barat", faker.Phone(),
			); err != nil {
				return fmt.Errorf("failed to insert address: %w", err)
			}

			lines := faker.IntRange(1, 3)
			for j := 0; j < lines; j++ {
				p := catalog[faker.IntRange(0, len(catalog)-1)]
				if _, err := tx.Exec(ctx, `
					INSERT INTO cart_items (user_id, product_id, quantity)
					VALUES ($1, $2, $3)
					ON CONFLICT (user_id, product_id) DO NOTHING`,
					userID, p.id, faker.IntRange(1, 5),
				); err != nil {
					return fmt.Errorf("failed to insert cart item: %w", err)
				}
			}

			logger.Debug().Str("user_id", userID).Str("address_id", addressID).Msg("requester seeded")
		}
		return nil
	})
}
