package inventory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/parser"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var insertColumns = []string{
	"user_id", "sku", "name", "cost_yen", "stock",
	"memo", "campaign", "size", "color", "image_url", "stock_received_at",
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// FindBySKUs returns the user's products whose SKU is in skus.
func (r *Repository) FindBySKUs(ctx context.Context, userID string, skus []string) ([]StockEntry, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	uid, err := parser.PgUUIDFromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id::text, sku, stock, cost_yen
		FROM products
		WHERE user_id = $1 AND sku = ANY($2)`, uid, skus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockEntry
	for rows.Next() {
		var e StockEntry
		var stock, cost int32
		if err := rows.Scan(&e.ID, &e.SKU, &stock, &cost); err != nil {
			return nil, err
		}
		e.Stock = int(stock)
		e.CostYen = int(cost)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertProducts writes one batch in a single transaction, so a batch is
// either stored completely or not at all.
func (r *Repository) InsertProducts(ctx context.Context, products []NewProduct) error {
	if len(products) == 0 {
		return nil
	}
	records := make([][]any, 0, len(products))
	for _, p := range products {
		uid, err := parser.PgUUIDFromString(p.UserID)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		received, err := parser.PgDate(p.StockReceivedAt)
		if err != nil {
			return fmt.Errorf("invalid received date %q: %w", p.StockReceivedAt, err)
		}
		cost, err := int4("cost", p.CostYen)
		if err != nil {
			return err
		}
		stock, err := int4("stock", p.Stock)
		if err != nil {
			return err
		}
		records = append(records, []any{
			uid,
			parser.PgText(p.SKU),
			p.Name,
			cost,
			stock,
			parser.PgText(p.Memo),
			parser.PgText(p.Campaign),
			parser.PgText(p.Size),
			parser.PgText(p.Color),
			parser.PgText(p.ImageURL),
			received,
		})
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"products"}, insertColumns, pgx.CopyFromRows(records))
	if err != nil {
		return err
	}
	if n != int64(len(records)) {
		return fmt.Errorf("inserted %d of %d products", n, len(records))
	}
	return tx.Commit(ctx)
}

func (r *Repository) UpdateProduct(ctx context.Context, u ProductUpdate) error {
	id, err := parser.PgUUIDFromString(u.ID)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}
	received, err := parser.PgDate(u.StockReceivedAt)
	if err != nil {
		return fmt.Errorf("invalid received date %q: %w", u.StockReceivedAt, err)
	}
	cost, err := int4("cost", u.CostYen)
	if err != nil {
		return err
	}
	stock, err := int4("stock", u.Stock)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products SET
			name = $2,
			cost_yen = $3,
			stock = $4,
			memo = $5,
			campaign = $6,
			size = $7,
			color = $8,
			image_url = COALESCE($9, image_url),
			stock_received_at = COALESCE($10, stock_received_at),
			updated_at = $11
		WHERE id = $1`,
		id,
		u.Name,
		cost,
		stock,
		parser.PgText(u.Memo),
		parser.PgText(u.Campaign),
		parser.PgText(u.Size),
		parser.PgText(u.Color),
		parser.PgText(u.ImageURL),
		received,
		pgtype.Timestamptz{Time: time.Now(), Valid: true},
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func int4(field string, v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s %d out of range", field, v)
	}
	return int32(v), nil
}
