package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationFS embed.FS

// Store names one of the two databases the bot keeps.
type Store string

const (
	Marketplace Store = "marketplace"
	Identity    Store = "identity"
)

func (s Store) migrationsDir() string {
	return "migrations/" + string(s)
}

func (s Store) migrationsTable() string {
	return "schema_migrations_" + string(s)
}

// Migrate applies the embedded migrations for a store. Each store keeps its
// own version table so both may share one physical database.
func Migrate(db *sql.DB, store Store) error {
	src, err := iofs.New(migrationFS, store.migrationsDir())
	if err != nil {
		return fmt.Errorf("failed to load %s migrations: %w", store, err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: store.migrationsTable()})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Printf("no change made by %s migration scripts", store)
			return nil
		}
		return err
	}
	log.Printf("%s migrations applied", store)
	return nil
}
