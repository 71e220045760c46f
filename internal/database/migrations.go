package database

import (
    "context"
    "embed"
    "fmt"
    "sort"
    "strings"

    "github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations, in file name order.  Each file may hold several
// statements separated by semicolons at line end.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
    entries, err := migrationFiles.ReadDir("migrations")
    if err != nil {
        return nil, err
    }
    var files []string
    for _, e := range entries {
        if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
            files = append(files, e.Name())
        }
    }
    sort.Strings(files)

    if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version VARCHAR(255) NOT NULL PRIMARY KEY,
        applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`); err != nil {
        return nil, fmt.Errorf("create schema_migrations: %w", err)
    }

    var applied []string
    for _, f := range files {
        var n int
        if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, f); err != nil {
            return applied, err
        }
        if n > 0 {
            continue
        }
        b, err := migrationFiles.ReadFile("migrations/" + f)
        if err != nil {
            return applied, err
        }
        for _, stmt := range splitStatements(string(b)) {
            if _, err := db.ExecContext(ctx, stmt); err != nil {
                return applied, fmt.Errorf("apply %s: %w", f, err)
            }
        }
        if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, f); err != nil {
            return applied, err
        }
        applied = append(applied, f)
    }
    return applied, nil
}

// splitStatements cuts a migration file into statements.  The driver runs
// one statement per Exec unless multiStatements is enabled, which we keep
// off.
func splitStatements(src string) []string {
    var out []string
    for _, part := range strings.Split(src, ";\n") {
        stmt := strings.TrimSuffix(strings.TrimSpace(part), ";")
        if stmt == "" {
            continue
        }
        out = append(out, stmt)
    }
    return out
}
