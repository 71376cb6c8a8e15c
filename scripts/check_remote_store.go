//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// Connects to the configured Postgres database, applies migrations and
// round-trips a cart for a throwaway user.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	store := repository.NewPostgresStore(pool, logger)
	userID := "smoke-test-" + time.Now().Format("20060102150405")

	cart := model.Cart{{
		ID:       "1",
		Name:     "Cotton Panjabi",
		Price:    model.Price{NewPrice: decimal.NewFromInt(1450)},
		Quantity: 2,
	}}
	if err := store.WriteCart(ctx, userID, cart); err != nil {
		fmt.Fprintf(os.Stderr, "WriteCart failed: %v\n", err)
		os.Exit(1)
	}

	got, err := store.ReadCart(ctx, userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ReadCart failed: %v\n", err)
		os.Exit(1)
	}

	if err := store.WriteCart(ctx, userID, model.Cart{}); err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully round-tripped %d cart item(s) for %s on %s\n", len(got), userID, cfg.Database.Database)
}
