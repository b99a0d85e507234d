package store

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

// config holds configuration options for the store.
type config struct {
	pragmas map[string]string
	log     zerolog.Logger
}

// StoreOption is a function that configures a store.
type StoreOption func(*config)

// WithPragma sets a specific SQLite PRAGMA statement.
// For example: WithPragma("synchronous", "NORMAL").
// This will override any default value for the given PRAGMA key.
func WithPragma(key, value string) StoreOption {
	return func(c *config) {
		if c.pragmas == nil {
			c.pragmas = make(map[string]string)
		}
		c.pragmas[key] = value
	}
}

// WithLogger sets the logger used for soft failures.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(c *config) {
		c.log = log
	}
}

// defaultConfig returns a config tuned for a single-writer bulk load.
func defaultConfig() *config {
	return &config{
		pragmas: map[string]string{
			"journal_mode": "WAL",
			"synchronous":  "OFF",
			"cache_size":   "-64000",
			"temp_store":   "MEMORY",
			"mmap_size":    "268435456",
			"busy_timeout": "5000",
			"foreign_keys": "OFF",
		},
		log: zerolog.Nop(),
	}
}

// NewSQLite opens (or creates) a SQLite-backed store.
// Pass ":memory:" for dbPath to create an in-memory database.
func NewSQLite(dbPath string, opts ...StoreOption) (*DB, error) {
	// A unique shared-cache name keeps separate in-memory stores apart while
	// letting the pool's connections see the same database.
	if dbPath == ":memory:" {
		id := inMemoryDBCounter.Add(1)
		dbPath = fmt.Sprintf("file:owltouml_%d?mode=memory&cache=shared", id)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Sorted keys keep PRAGMA execution order deterministic.
	keys := make([]string, 0, len(cfg.pragmas))
	for k := range cfg.pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pragmaSQL := fmt.Sprintf("PRAGMA %s=%s", key, cfg.pragmas[key])
		if _, err := db.Exec(pragmaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragmaSQL, err)
		}
	}

	store := &DB{
		db:      db,
		ownsDB:  true,
		dialect: sqliteDialect{},
		log:     cfg.log,
	}
	if err := store.initSchemaAndStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLiteFromDB creates a store on an existing SQLite connection.
// The caller retains ownership of db and must close it separately.
func NewSQLiteFromDB(db *sql.DB, opts ...StoreOption) (*DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	store := &DB{
		db:      db,
		ownsDB:  false,
		dialect: sqliteDialect{},
		log:     cfg.log,
	}
	if err := store.initSchemaAndStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}
