package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/store"
)

// Store implements store.KV on a single kv_items table. Conditional inserts
// lean on the primary key, so concurrent creates resolve inside PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a KV store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get implements store.KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var item []byte
	err := s.db.QueryRowContext(ctx, "SELECT item FROM kv_items WHERE k = $1", key).Scan(&item)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return item, nil
}

// Put implements store.KV.
func (s *Store) Put(ctx context.Context, key string, item []byte, ifAbsent bool) error {
	if ifAbsent {
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO kv_items (k, item) VALUES ($1, $2) ON CONFLICT (k) DO NOTHING",
			key, item,
		)
		if err != nil {
			return fmt.Errorf("conditional put %q: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("conditional put %q: %w", key, err)
		}
		if n == 0 {
			return store.ErrConditionFailed
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_items (k, item) VALUES ($1, $2)
		 ON CONFLICT (k) DO UPDATE SET item = EXCLUDED.item, updated_at = NOW()`,
		key, item,
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete implements store.KV.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM kv_items WHERE k = $1", key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Query implements store.KV.
func (s *Store) Query(ctx context.Context, prefix string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item FROM kv_items WHERE k LIKE $1 ESCAPE '\' ORDER BY k`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", prefix, err)
	}
	defer rows.Close()

	var items [][]byte
	for rows.Next() {
		var item []byte
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("query %q: %w", prefix, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %q: %w", prefix, err)
	}
	return items, nil
}

// escapeLike neutralises LIKE metacharacters in a key prefix. Emails in order
// keys may legitimately contain underscores.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
