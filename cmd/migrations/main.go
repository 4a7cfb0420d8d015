package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/pollroom/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollroom/internal/config"
)

// Usage: migrations [db flags] up|down
func main() {
	args := append([]string{"-storage", config.StoragePostgres}, os.Args[1:]...)
	cfg, err := config.Load(args)
	if err != nil {
		log.Fatal(err)
	}
	if len(cfg.Args) != 1 {
		log.Fatalf("a migration direction is required (%s or %s)", postgres.DirectionUp, postgres.DirectionDown)
	}
	direction := cfg.Args[0]

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db, direction); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Printf("Migrations (%s) executed successfully.\n", direction)
}
