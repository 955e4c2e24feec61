package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/legendauc/auctionbot/internal/config"
)

// Open connects to one of the two stores and configures its pool.
func Open(name string, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s database: %w", name, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Printf("%s database connection established", name)
	return db, nil
}

// MustOpen opens and migrates a store, exiting on failure.
func MustOpen(store Store, cfg config.DBConfig) *sql.DB {
	db, err := Open(string(store), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := Migrate(db, store); err != nil {
		db.Close()
		log.Fatalf("Failed to migrate %s database: %v", store, err)
	}
	return db
}
