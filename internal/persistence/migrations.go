package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RunMigrations executes the .sql files found in dir in lexical order.
// Every migration must be safe to re-apply.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	filenames, err := migrationFiles(dir)
	if err != nil {
		return err
	}

	for _, name := range filenames {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration", zap.String("file", name))
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(filenames)))
	return nil
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	return filenames, nil
}
