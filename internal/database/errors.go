package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errorMap = map[string]string{
	//UniqueViolation
	"23505": "は既に使われています",
	//NotNullViolation
	"23502": "は必須です",
	//ForeignKeyViolation
	"23503": "の参照先が存在しません",
	//CheckViolation
	"23514": "が制約に違反しています",
}

// GetError maps a constraint violation to a validation error. The column is
// taken from constraint names shaped like products_sku_key.
func GetError(err *pgconn.PgError, constraint string) *rest.ApiErr {
	columnName := columnFromConstraint(constraint)
	if columnName == "" {
		columnName = err.ColumnName
	}
	if message, ok := errorMap[err.Code]; ok {
		fmtMsg := fmt.Sprintf("%s%s", columnName, message)
		cause := rest.Causes{
			Field:   columnName,
			Message: fmtMsg,
		}
		return rest.NewBadRequestValidationError(fmtMsg, []rest.Causes{cause})
	}
	return rest.NewInternalServerError("データの保存に失敗しました")
}

// Describe renders a storage error as a short message fit for an import
// result line.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "対象が見つかりません"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, known := errorMap[pgErr.Code]; known {
			return GetError(pgErr, pgErr.ConstraintName).Message
		}
		return pgErr.Message
	}
	return err.Error()
}

func columnFromConstraint(constraint string) string {
	parts := strings.Split(constraint, "_")
	if len(parts) >= 3 {
		return strings.Join(parts[1:len(parts)-1], "_")
	}
	return ""
}
