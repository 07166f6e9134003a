package zombiezen

import (
	"context"
	"embed"
	"fmt"

	"zombiezen.com/go/sqlite/sqlitex"
)

//go:embed sql/schema.sql
var sqlFiles embed.FS

// InitSchema creates the document tables if they do not exist.
func InitSchema(ctx context.Context, pool *sqlitex.Pool) error {
	script, err := sqlFiles.ReadFile("sql/schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	conn, err := pool.Take(ctx)
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
		return fmt.Errorf("executing schema script: %w", err)
	}
	return nil
}
