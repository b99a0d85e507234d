package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// NewPostgres creates a PostgreSQL-backed store from a connection string.
// PRAGMA options are ignored; WithLogger applies.
func NewPostgres(connStr string, opts ...StoreOption) (*DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	store := &DB{
		db:      db,
		ownsDB:  true,
		dialect: postgresDialect{},
		log:     cfg.log,
	}
	if err := store.initSchemaAndStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema for PostgreSQL: %w", err)
	}

	return store, nil
}

// NewPostgresFromDB creates a store on an existing PostgreSQL connection.
// The caller retains ownership of db and must close it separately.
func NewPostgresFromDB(db *sql.DB, opts ...StoreOption) (*DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	store := &DB{
		db:      db,
		ownsDB:  false,
		dialect: postgresDialect{},
		log:     cfg.log,
	}
	if err := store.initSchemaAndStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema for PostgreSQL: %w", err)
	}

	return store, nil
}
