// Package collection owns the user's caught items and enforces the
// visible-capacity invariant.
package collection

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/focustank/internal/catalog"
)

// CollectedItem is a user-owned instance of a catalog item. Two values with
// the same ID are the same entity.
type CollectedItem struct {
	ID          string         `json:"id"`
	ItemID      string         `json:"item_id"`
	Rarity      catalog.Rarity `json:"rarity"`
	Size        catalog.Size   `json:"size"`
	Name        string         `json:"name"`
	CaughtAt    time.Time      `json:"caught_at"`
	ModifiedAt  time.Time      `json:"modified_at"`
	Visible     bool           `json:"visible"`
	Exceptional bool           `json:"exceptional"`
}

// Catch is a freshly drawn item waiting to be added.
type Catch struct {
	Item        catalog.Item
	Exceptional bool
}

// TimePrecision is the resolution of CaughtAt and ModifiedAt. It matches
// what the server store keeps.
const TimePrecision = time.Microsecond

// NewCollected creates an item with a fresh id, named after the catalog item.
func NewCollected(c Catch, now time.Time) CollectedItem {
	now = now.Truncate(TimePrecision)
	return CollectedItem{
		ID:          uuid.NewString(),
		ItemID:      c.Item.ID,
		Rarity:      c.Item.Rarity,
		Size:        c.Item.Size,
		Name:        c.Item.Name,
		CaughtAt:    now,
		ModifiedAt:  now,
		Exceptional: c.Exceptional,
	}
}

// NewerThan reports whether it wins a last-writer-wins comparison against
// other. Ties lose.
func (it CollectedItem) NewerThan(other CollectedItem) bool {
	return it.ModifiedAt.After(other.ModifiedAt)
}
