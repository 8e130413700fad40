package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// Dir is where the schema lives: products, carts, cart_items, orders,
// order_items, users and their indexes, one goose SQL file per change.
const Dir = "pkg/migrate/migrations"

var dialectOnce sync.Once

func prepare() (err error) {
	dialectOnce.Do(func() {
		err = goose.SetDialect("postgres")
	})
	return err
}

// Exec runs a goose command (up, down, status, ...) against the given
// connection. Goose writes its progress to stdout.
func Exec(ctx context.Context, db *sql.DB, dir, command string, args ...string) error {
	if db == nil || dir == "" {
		return fmt.Errorf("migrate: db and dir are required")
	}
	if err := prepare(); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("migrate: goose %s: %w", command, err)
	}
	return nil
}

// ToVersion moves the schema up or down until it sits at target, which is a
// migration timestamp as recorded by goose. Already there is not an error.
func ToVersion(ctx context.Context, db *sql.DB, dir string, target int64) error {
	if err := prepare(); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("migrate: read db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		err = goose.UpToContext(ctx, db, dir, target)
	default:
		err = goose.DownToContext(ctx, db, dir, target)
	}
	if err != nil {
		return fmt.Errorf("migrate: to version %d: %w", target, err)
	}
	return nil
}
