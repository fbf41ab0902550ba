package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"quicksell-bot/internal/models"
)

//go:embed schema/*.sql
var ddl embed.FS

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB is the inventory store. Queries run against the pool; use InTx to run
// them inside a transaction.
type DB struct {
	*sqlx.DB
	Queries
}

// Tx is a Queries bound to an open transaction.
type Tx struct {
	*sqlx.Tx
	Queries
}

// Queries holds every statement of the store. It runs against either the
// pool or a transaction.
type Queries struct {
	q sqlx.ExtContext
}

// Open connects to dsn and creates missing tables. postgres:// and
// postgresql:// URLs use pgx; anything else is a SQLite path, optionally
// prefixed with sqlite://.
func Open(ctx context.Context, dsn string) (*DB, error) {
	driver, source, schema := resolve(dsn)

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := migrate(ctx, db, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{DB: db, Queries: Queries{q: db}}, nil
}

func resolve(dsn string) (driver, source, schema string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dsn, "schema/postgres.sql"
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "sqlite", path + sep + "_pragma=foreign_keys(1)", "schema/sqlite.sql"
}

func migrate(ctx context.Context, db *sqlx.DB, schema string) error {
	b, err := ddl.ReadFile(schema)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(b))
	return err
}

// InTx runs fn in a transaction. It commits when fn returns nil and rolls
// back otherwise.
func (d *DB) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&Tx{Tx: tx, Queries: Queries{q: tx}}); err != nil {
		return err
	}
	return tx.Commit()
}

func (q Queries) get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := sqlx.GetContext(ctx, q.q, dest, q.q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (q Queries) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.q, dest, q.q.Rebind(query), args...)
}

func (q Queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.q.ExecContext(ctx, q.q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert runs an INSERT ... RETURNING id statement.
func (q Queries) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := q.q.QueryRowxContext(ctx, q.q.Rebind(query), args...).Scan(&id)
	return id, err
}

func (q Queries) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q.q, &n, q.q.Rebind(query), args...)
	return n, err
}

// Counts returns global row counts.
func (q Queries) Counts(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	var err error
	if s.Users, err = q.count(ctx, `SELECT COUNT(*) FROM users`); err != nil {
		return s, err
	}
	if s.Shops, err = q.count(ctx, `SELECT COUNT(*) FROM shops`); err != nil {
		return s, err
	}
	if s.Products, err = q.count(ctx, `SELECT COUNT(*) FROM products`); err != nil {
		return s, err
	}
	s.Sales, err = q.count(ctx, `SELECT COUNT(*) FROM sales`)
	return s, err
}
