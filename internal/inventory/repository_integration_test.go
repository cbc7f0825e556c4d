//go:build integration

package inventory

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/freitasmatheusrn/fleamarket-inventory/internal/database/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TestRepository_Integration runs against a real Postgres
// Run with: go test -v -tags=integration ./internal/inventory/...
//
// Required environment variables:
//   - DATABASE_URL
func TestRepository_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Init(dsn)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	repo := NewRepository(pool)
	userID := uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM products WHERE user_id = $1", userID)
	})

	err = repo.InsertProducts(ctx, []NewProduct{
		{UserID: userID, SKU: "IT-1", Name: "湯呑", CostYen: 100, Stock: 5, ImageURL: "https://cdn.test/it-1.jpg", StockReceivedAt: "2024-03-05"},
		{UserID: userID, Name: "SKUなし", CostYen: 50, Stock: 1},
	})
	if err != nil {
		t.Fatalf("InsertProducts: %v", err)
	}

	entries, err := repo.FindBySKUs(ctx, userID, []string{"IT-1", "IT-404"})
	if err != nil {
		t.Fatalf("FindBySKUs: %v", err)
	}
	if len(entries) != 1 || entries[0].Stock != 5 || entries[0].CostYen != 100 {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	err = repo.UpdateProduct(ctx, ProductUpdate{ID: entries[0].ID, Name: "湯呑", CostYen: 150, Stock: 10})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	var stock, cost int32
	var received *time.Time
	var imageURL *string
	err = pool.QueryRow(ctx, "SELECT stock, cost_yen, stock_received_at, image_url FROM products WHERE id = $1", entries[0].ID).Scan(&stock, &cost, &received, &imageURL)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if stock != 10 || cost != 150 {
		t.Errorf("stock/cost = %d/%d", stock, cost)
	}
	if received == nil || received.Format(time.DateOnly) != "2024-03-05" {
		t.Errorf("received date should survive an update without one, got %v", received)
	}
	if imageURL == nil || *imageURL != "https://cdn.test/it-1.jpg" {
		t.Errorf("image should survive an update without one, got %v", imageURL)
	}

	err = repo.UpdateProduct(ctx, ProductUpdate{ID: entries[0].ID, Name: "湯呑", CostYen: 150, Stock: 10, ImageURL: "https://cdn.test/it-1b.jpg"})
	if err != nil {
		t.Fatalf("UpdateProduct with image: %v", err)
	}
	err = pool.QueryRow(ctx, "SELECT image_url FROM products WHERE id = $1", entries[0].ID).Scan(&imageURL)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if imageURL == nil || *imageURL != "https://cdn.test/it-1b.jpg" {
		t.Errorf("new image should replace the old one, got %v", imageURL)
	}

	err = repo.UpdateProduct(ctx, ProductUpdate{ID: entries[0].ID, Name: "湯呑", Stock: 1 << 31})
	if err == nil {
		t.Error("out of range stock should be rejected before reaching the database")
	}

	err = repo.UpdateProduct(ctx, ProductUpdate{ID: uuid.NewString(), Name: "x"})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("missing product: got %v", err)
	}
}
