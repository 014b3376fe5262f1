// Package catalog holds the static item catalog: every item that can be
// caught, with its rarity and size class. The catalog is built once from
// tuning and never mutated.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/focustank/internal/common"
)

// Rarity is ordered from most to least common.
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
)

// RarityCount is the number of rarity classes.
const RarityCount = 5

var rarityNames = [RarityCount]string{"common", "uncommon", "rare", "epic", "legendary"}

// Rarities returns all classes in canonical order.
func Rarities() []Rarity {
	return []Rarity{Common, Uncommon, Rare, Epic, Legendary}
}

func (r Rarity) Valid() bool { return r >= Common && r <= Legendary }

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rarity(%d)", int(r))
	}
	return rarityNames[r]
}

func ParseRarity(s string) (Rarity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown rarity %q", common.ErrConfiguration, s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rarity %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type Size int

const (
	Tiny Size = iota
	Small
	Medium
	Large
	Huge
	Giant
)

var sizeNames = []string{"tiny", "small", "medium", "large", "huge", "giant"}

func (s Size) Valid() bool { return s >= Tiny && s <= Giant }

func (s Size) String() string {
	if !s.Valid() {
		return fmt.Sprintf("size(%d)", int(s))
	}
	return sizeNames[s]
}

func ParseSize(s string) (Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sizeNames {
		if name == s {
			return Size(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown size %q", common.ErrConfiguration, s)
}

func (s Size) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid size %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(b []byte) error {
	v, err := ParseSize(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Item is an immutable catalog entry.
type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
	Size   Size   `json:"size"`
}

type Catalog struct {
	items    []Item
	byID     map[string]Item
	byRarity [RarityCount][]Item
}

// New validates items and indexes them. Every rarity class must have at
// least one item and ids must be unique.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]Item, len(items)),
	}

	var errs []string
	for i, it := range items {
		switch {
		case it.ID == "":
			errs = append(errs, fmt.Sprintf("item[%d]: empty id", i))
			continue
		case it.Name == "":
			errs = append(errs, fmt.Sprintf("item %q: empty name", it.ID))
			continue
		case !it.Rarity.Valid():
			errs = append(errs, fmt.Sprintf("item %q: invalid rarity", it.ID))
			continue
		case !it.Size.Valid():
			errs = append(errs, fmt.Sprintf("item %q: invalid size", it.ID))
			continue
		}
		if _, dup := c.byID[it.ID]; dup {
			errs = append(errs, fmt.Sprintf("item %q: duplicate id", it.ID))
			continue
		}
		c.items = append(c.items, it)
		c.byID[it.ID] = it
		c.byRarity[it.Rarity] = append(c.byRarity[it.Rarity], it)
	}

	for _, r := range Rarities() {
		if len(c.byRarity[r]) == 0 {
			errs = append(errs, fmt.Sprintf("rarity %s has no items", r))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: catalog: %s", common.ErrConfiguration, strings.Join(errs, "; "))
	}
	return c, nil
}

// ByRarity returns the items of class r in catalog order.
func (c *Catalog) ByRarity(r Rarity) []Item {
	if !r.Valid() {
		return nil
	}
	return c.byRarity[r]
}

func (c *Catalog) Lookup(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// All returns a copy of every item, sorted by rarity then name.
func (c *Catalog) All() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rarity != out[j].Rarity {
			return out[i].Rarity < out[j].Rarity
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (c *Catalog) Len() int { return len(c.items) }
