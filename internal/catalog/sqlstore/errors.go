package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"setmatch-service/internal/catalog"
)

// classify maps driver errors onto the catalog error set: missing rows become
// ErrNotFound, connection-level Postgres failures become ErrUnavailable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, catalog.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && unavailableCode(pgErr.Code) {
		return fmt.Errorf("%s: %w: %s (%s)", op, catalog.ErrUnavailable, pgErr.Message, pgErr.Code)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w: %v", op, catalog.ErrUnavailable, connErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// unavailableCode reports SQLSTATE classes that mean the server cannot serve
// right now: connection exceptions, insufficient resources, operator intervention.
func unavailableCode(code string) bool {
	return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "53") || strings.HasPrefix(code, "57P")
}
