// Package items stores the server copy of each user's collection.
package items

import (
	"context"

	"github.com/dmitrijs2005/focustank/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Item, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	// InsertBatch writes all items in as few statements as the driver's
	// parameter limit allows.
	InsertBatch(ctx context.Context, items []models.Item) error
}
