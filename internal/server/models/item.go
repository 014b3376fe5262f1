package models

import "time"

// Item is one stored collected item. Rarity and Size keep their catalog
// names so the table stays readable without the tuning file.
type Item struct {
	UserID      string
	ID          string
	ItemID      string
	Rarity      string
	Size        string
	Name        string
	CaughtAt    time.Time
	ModifiedAt  time.Time
	Visible     bool
	Exceptional bool
}
