package postgres

import (
	"database/sql"
	"log"
)

// RunMigrations creates the kv_items table the KV store is backed by.
func RunMigrations(db *sql.DB) error {
	for _, m := range migrations() {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("Migrations completed")
	return nil
}

func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS kv_items (
			k TEXT PRIMARY KEY,
			item JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		// Prefix queries (text_pattern_ops supports LIKE 'prefix%').
		`CREATE INDEX IF NOT EXISTS kv_items_prefix_idx ON kv_items (k text_pattern_ops)`,
	}
}
