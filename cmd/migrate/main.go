package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/hydroline/analytics/internal/adapters/postgres"
	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed>")
	}

	_ = godotenv.Load()

	cfg, err := config.Load("hydroline-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db.Pool, "migrations/001_sites.up.sql")
		seed(ctx, db)
	case "down":
		runMigrations(ctx, db.Pool, "migrations/001_sites.down.sql")
	case "seed":
		seed(ctx, db)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, files ...string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// seed replaces the sites table with the embedded catalog.
func seed(ctx context.Context, db *postgres.DB) {
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	n, err := postgres.NewSiteRepo(db).ReplaceAll(ctx, cat.AllSites())
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("OK  seeded %d sites\n", n)
}
