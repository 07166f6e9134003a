// Package zombiezen implements document storage on SQLite via
// zombiezen.com/go/sqlite.
package zombiezen

import (
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite/sqlitex"
)

// NewPool creates a SQLite connection pool for the database file at dbPath,
// creating the file if needed.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	initString := fmt.Sprintf("file:%s", dbPath)

	pool, err := sqlitex.NewPool(initString, sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating sqlite pool at %s: %w", dbPath, err)
	}
	return pool, nil
}
