// CLI tool to apply pending schema migrations from db/.
// Applied files are recorded in the migrations table; each file and its
// record are committed in one transaction.
// Usage: go run ./cmd/migrate [-dir db] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS migrations (
	id          serial PRIMARY KEY,
	migration   text NOT NULL UNIQUE,
	description text NOT NULL,
	applied_at  timestamptz NOT NULL DEFAULT now()
)`

func main() {
	dir := flag.String("dir", "db", "directory holding *.sql migration files")
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No migration files found in %s\n", *dir)
		os.Exit(1)
	}

	if _, err := conn.Exec(ctx, createMigrationsTable); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating migrations table: %v\n", err)
		os.Exit(1)
	}

	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading migrations: %v\n", err)
		os.Exit(1)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading migrations: %v\n", err)
		os.Exit(1)
	}
	for _, name := range names {
		applied[name] = true
	}

	pending := pendingMigrations(files, applied)
	if len(pending) == 0 {
		fmt.Println("No pending migrations.")
		return
	}

	for _, f := range pending {
		filename := filepath.Base(f)
		if *dryRun {
			fmt.Printf("  pending: %s\n", filename)
			continue
		}
		if err := apply(ctx, conn, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying %s: %v\n", filename, err)
			os.Exit(1)
		}
		fmt.Printf("  applied: %s\n", filename)
	}

	if !*dryRun {
		fmt.Printf("\n%d migration(s) applied.\n", len(pending))
	}
}

// pendingMigrations returns files not yet in applied, in filename order.
func pendingMigrations(files []string, applied map[string]bool) []string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	var pending []string
	for _, f := range sorted {
		if !applied[filepath.Base(f)] {
			pending = append(pending, f)
		}
	}
	return pending
}

// apply runs one migration file and records it in the same transaction.
func apply(ctx context.Context, conn *pgx.Conn, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	filename := filepath.Base(path)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
		filename, descriptionFromFilename(filename)); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit(ctx)
}

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
