// Package db wraps [github.com/jackc/pgx/v5/pgxpool] with the pieces every
// repository needs: pool setup with retry, transactions, schema migrations
// through [github.com/pressly/goose/v3] and error classification.
//
// Settings come from the environment:
//
//	DATABASE_URL                - PostgreSQL connection URL
//	DATABASE_MAX_OPEN_CONNS     - maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - connection attempts on startup (default: 3)
//	DATABASE_RETRY_INTERVAL     - base retry interval (default: 2s)
//
// Typical use:
//
//	pool, err := db.Connect(ctx, cfg.DB)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations.FS, log); err != nil {
//		return err
//	}
//
//	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "DELETE FROM albums WHERE id = $1", id)
//		return err
//	})
package db
