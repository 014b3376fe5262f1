package items

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/collection"
	"github.com/dmitrijs2005/focustank/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ collection.Snapshotter = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]collection.CollectedItem, error) {
	query := `SELECT id, item_id, rarity, size, name, caught_at, modified_at, visible, exceptional
		FROM items ORDER BY caught_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	var result []collection.CollectedItem
	for rows.Next() {
		var (
			it                 collection.CollectedItem
			rarity, size       string
			caught, modified   int64
			visible, exception bool
		)
		if err := rows.Scan(&it.ID, &it.ItemID, &rarity, &size, &it.Name, &caught, &modified, &visible, &exception); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if it.Rarity, err = catalog.ParseRarity(rarity); err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		if it.Size, err = catalog.ParseSize(size); err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		it.CaughtAt = time.Unix(0, caught).UTC()
		it.ModifiedAt = time.Unix(0, modified).UTC()
		it.Visible = visible
		it.Exceptional = exception
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return result, nil
}

// ReplaceAll swaps the stored snapshot in one transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []collection.CollectedItem) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
			return fmt.Errorf("failed to clear items: %w", err)
		}
		query := `INSERT INTO items (id, item_id, rarity, size, name, caught_at, modified_at, visible, exceptional)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		for _, it := range items {
			_, err := tx.ExecContext(ctx, query,
				it.ID, it.ItemID, it.Rarity.String(), it.Size.String(), it.Name,
				it.CaughtAt.UnixNano(), it.ModifiedAt.UnixNano(), it.Visible, it.Exceptional)
			if err != nil {
				return fmt.Errorf("failed to insert item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}
