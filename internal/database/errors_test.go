package database

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no rows", fmt.Errorf("update: %w", pgx.ErrNoRows), "対象が見つかりません"},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "products_sku_key"}, "skuは既に使われています"},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, "nameは必須です"},
		{"other pg error", &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}, "canceling statement due to statement timeout"},
		{"plain", errors.New("conn closed"), "conn closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetError(t *testing.T) {
	apiErr := GetError(&pgconn.PgError{Code: "23514"}, "products_stock_check")
	if apiErr.Code != http.StatusBadRequest || len(apiErr.Causes) != 1 || apiErr.Causes[0].Field != "stock" {
		t.Errorf("unexpected error: %+v", apiErr)
	}

	apiErr = GetError(&pgconn.PgError{Code: "XX000"}, "")
	if apiErr.Code != http.StatusInternalServerError {
		t.Errorf("unknown code should be internal, got %d", apiErr.Code)
	}
}
