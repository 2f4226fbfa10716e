package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mossdale/dropforge/internal/catalog"
	"github.com/mossdale/dropforge/internal/config"
	"github.com/mossdale/dropforge/internal/database/postgres"
	"github.com/mossdale/dropforge/internal/database/schema"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// 1. Connect to the default 'postgres' database to create the target database
	defaultConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort)
	conn, err := pgx.Connect(ctx, defaultConnString)
	if err != nil {
		log.Fatalf("Unable to connect to postgres database: %v", err)
	}

	// 2. Check if database exists
	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		log.Fatalf("Failed to check if database exists: %v", err)
	}

	if !exists {
		fmt.Printf("Creating database %s...\n", cfg.DBName)
		_, err = conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", cfg.DBName))
		if err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		fmt.Println("Database created successfully.")
	} else {
		fmt.Printf("Database %s already exists.\n", cfg.DBName)
	}
	conn.Close(ctx)

	// 3. Apply the schema to the target database
	pool, err := pgxpool.New(ctx, cfg.GetDBConnString())
	if err != nil {
		log.Fatalf("Unable to connect to %s database: %v", cfg.DBName, err)
	}
	defer pool.Close()

	fmt.Println("Applying schema...")
	if _, err := pool.Exec(ctx, schema.SchemaSQL); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	fmt.Println("Schema applied successfully.")

	// 4. Seed item definitions from the catalog file
	loader := catalog.NewLoader()
	catalogCfg, err := loader.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("Failed to load catalog file: %v", err)
	}
	if err := loader.Validate(catalogCfg); err != nil {
		log.Fatalf("Catalog file is invalid: %v", err)
	}

	result, err := loader.SyncToDatabase(ctx, catalogCfg, postgres.NewCatalogRepository(pool))
	if err != nil {
		log.Fatalf("Failed to sync catalog: %v", err)
	}
	fmt.Printf("Catalog synced: %d inserted, %d updated, %d skipped.\n",
		result.ItemsInserted, result.ItemsUpdated, result.ItemsSkipped)
}
