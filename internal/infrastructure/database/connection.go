package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/kovoc/internal/infrastructure/config"
)

// DB bundles the sqlx handle with the ent dialect used to build queries.
type DB struct {
	*sqlx.DB
	Dialect string
}

// NewDB opens the configured local store.
func NewDB(cfg *config.Config) (*DB, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}
	return Open(driver, dsn)
}

// Open connects to a sqlite3 or postgres database.
func Open(driver, dsn string) (*DB, func(), error) {
	switch driver {
	case "postgres":
		return open("pgx", dialect.Postgres, dsn, nil)
	case "sqlite3":
		return open("sqlite3", dialect.SQLite, dsn, func(ctx context.Context, raw *sql.DB) error {
			raw.SetMaxOpenConns(1)
			raw.SetMaxIdleConns(1)
			if _, err := raw.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
				return fmt.Errorf("enable sqlite foreign keys: %w", err)
			}
			return nil
		})
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func open(driverName, dialectName, dsn string, prepare func(context.Context, *sql.DB) error) (*DB, func(), error) {
	raw, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s db: %w", dialectName, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := raw.PingContext(ctx); err != nil {
		raw.Close()
		return nil, nil, fmt.Errorf("ping %s db: %w", dialectName, err)
	}
	if prepare != nil {
		if err := prepare(ctx, raw); err != nil {
			raw.Close()
			return nil, nil, err
		}
	}

	db := &DB{DB: sqlx.NewDb(raw, driverName), Dialect: dialectName}
	return db, func() {
		_ = db.Close()
	}, nil
}

// Builder returns an ent SQL builder bound to the database dialect.
func (db *DB) Builder() *entsql.DialectBuilder {
	return entsql.Dialect(db.Dialect)
}

// Migrate creates or upgrades the local store schema.
func Migrate(ctx context.Context, db *DB, logger logrus.FieldLogger) error {
	drv := entsql.OpenDB(db.Dialect, db.DB.DB)
	migrate, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if logger != nil {
		logger.WithField("dialect", db.Dialect).WithField("tables", len(Tables)).Info("database schema is up to date")
	}
	return nil
}
