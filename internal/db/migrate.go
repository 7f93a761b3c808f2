package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// Migrate applies the coaching schema over a database/sql connection. Every statement
// in the schema is idempotent, so running it against an up-to-date database is a no-op.
func Migrate(ctx context.Context, params NewDBPoolParams) error {
	dsn := params.ConnString() + "?sslmode=disable"
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warnf("close migration connection: %s", err)
		}
	}()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, Schema); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("rollback migration: %s", rbErr)
		}
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	var tables int
	if err := conn.GetContext(ctx, &tables, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1)`,
		pq.Array(Tables),
	); err != nil {
		return fmt.Errorf("verify schema: %w", err)
	}
	if tables != len(Tables) {
		return fmt.Errorf("schema incomplete: found %d of %d tables", tables, len(Tables))
	}

	log.Infof("schema applied, %d tables present", tables)
	return nil
}
