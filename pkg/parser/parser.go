package parser

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func PgUUIDFromString(id string) (pgtype.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}

	var pgUUID pgtype.UUID
	copy(pgUUID.Bytes[:], u[:])
	pgUUID.Valid = true

	return pgUUID, nil
}

func PgUUIDToString(id pgtype.UUID) (string, error) {
	if !id.Valid {
		return "", errors.New("IDが不正です")
	}

	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

// PgText maps the empty string to NULL.
func PgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// PgDate parses YYYY-MM-DD; the empty string is NULL.
func PgDate(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}
