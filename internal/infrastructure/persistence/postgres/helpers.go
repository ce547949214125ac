package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

type scannable interface {
	Scan(dest ...any) error
}

// nullableString maps "" to NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

// lookupError turns pgx.ErrNoRows into a not-found error for resource.
func lookupError(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource, id)
	}
	return fmt.Errorf("find %s: %w", resource, err)
}

func staleVersion(resource, id string) error {
	return apperr.Wrap(apperr.ErrConflict, fmt.Errorf("%s %q was modified concurrently: %w", resource, id, port.ErrStaleVersion))
}
