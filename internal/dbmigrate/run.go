package dbmigrate

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Commands lists the goose commands the migrate binary accepts
var Commands = []string{"up", "down", "status"}

// ValidCommand reports whether command is one of Commands
func ValidCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}

// Run opens dbURL and applies command against the embedded migrations
func Run(command string, dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if !ValidCommand(command) {
		return fmt.Errorf("unsupported command %q", command)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return RunDB(command, db)
}

// RunDB applies command on an already open connection
func RunDB(command string, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, migrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}
