//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5"
)

// Connects with the DB_* settings and lists the stored client state keys.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected to database: %s\n", dbName)

	rows, err := conn.Query(ctx, "SELECT key, octet_length(value), updated_at FROM kv_state ORDER BY key")
	if err != nil {
		fmt.Fprintf(os.Stderr, "kv_state not readable (run the server once to migrate): %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key     string
			size    int
			updated any
		)
		if err := rows.Scan(&key, &size, &updated); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-16s %6d bytes  %v\n", key, size, updated)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Rows failed: %v\n", err)
		os.Exit(1)
	}
}
