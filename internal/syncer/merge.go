// Package syncer reconciles the local collection with the remote store.
// The remote side is always a full-replacement target.
package syncer

import (
	"sort"

	"github.com/dmitrijs2005/focustank/internal/collection"
)

// Merge unions local and remote by id. When both sides hold an id, the one
// with the later ModifiedAt wins and ties keep local. The result is ordered
// by capture time, then id.
func Merge(local, remote []collection.CollectedItem) []collection.CollectedItem {
	byID := make(map[string]collection.CollectedItem, len(local)+len(remote))
	for _, r := range remote {
		byID[r.ID] = r
	}
	for _, l := range local {
		r, ok := byID[l.ID]
		if !ok || !r.NewerThan(l) {
			byID[l.ID] = l
		}
	}

	out := make([]collection.CollectedItem, 0, len(byID))
	for _, it := range byID {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CaughtAt.Equal(out[j].CaughtAt) {
			return out[i].CaughtAt.Before(out[j].CaughtAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Equal reports whether a and b hold the same items with the same fields,
// ignoring order.
func Equal(a, b []collection.CollectedItem) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[string]collection.CollectedItem, len(a))
	for _, it := range a {
		byID[it.ID] = it
	}
	for _, it := range b {
		other, ok := byID[it.ID]
		if !ok || !sameFields(it, other) {
			return false
		}
	}
	return true
}

func sameFields(a, b collection.CollectedItem) bool {
	return a.ItemID == b.ItemID &&
		a.Rarity == b.Rarity &&
		a.Size == b.Size &&
		a.Name == b.Name &&
		a.CaughtAt.Equal(b.CaughtAt) &&
		a.ModifiedAt.Equal(b.ModifiedAt) &&
		a.Visible == b.Visible &&
		a.Exceptional == b.Exceptional
}
