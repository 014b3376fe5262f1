// Package items persists the collection snapshot in the local SQLite
// database.
package items

import (
	"context"

	"github.com/dmitrijs2005/focustank/internal/collection"
)

// Repository is the durable form of the collection. It is always written
// as a whole.
type Repository interface {
	LoadAll(ctx context.Context) ([]collection.CollectedItem, error)
	ReplaceAll(ctx context.Context, items []collection.CollectedItem) error
}
