package items

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/dmitrijs2005/focustank/internal/dbx"
	"github.com/dmitrijs2005/focustank/internal/server/models"
)

const table = "items"

// batchSize keeps one INSERT well below the 65535 bind parameter limit.
const batchSize = 500

var columns = []string{
	"user_id", "id", "item_id", "rarity", "size", "name",
	"caught_at", "modified_at", "visible", "exceptional",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Item, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("caught_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.UserID, &it.ID, &it.ItemID, &it.Rarity, &it.Size, &it.Name,
			&it.CaughtAt, &it.ModifiedAt, &it.Visible, &it.Exceptional); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	query, args, err := psql.Delete(table).Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) InsertBatch(ctx context.Context, items []models.Item) error {
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		insert := psql.Insert(table).Columns(columns...)
		for _, it := range items[start:end] {
			insert = insert.Values(it.UserID, it.ID, it.ItemID, it.Rarity, it.Size, it.Name,
				it.CaughtAt.UTC(), it.ModifiedAt.UTC(), it.Visible, it.Exceptional)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
