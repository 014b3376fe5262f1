package api

import (
	"time"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/collection"
)

type RegisterUserRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterUserResponse struct {
	UserID string `json:"user_id"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifier_candidate"`
}

type LoginResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type FetchAllRequest struct {
	UserID string `json:"user_id"`
}

type FetchAllResponse struct {
	Items []Item `json:"items"`
}

// ReplaceAllRequest carries the complete collection. The server drops
// every item it holds for the user that is not listed.
type ReplaceAllRequest struct {
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

type ReplaceAllResponse struct {
	Stored int `json:"stored"`
}

// Item is the wire form of collection.CollectedItem.
type Item struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	Rarity      string    `json:"rarity"`
	Size        string    `json:"size"`
	Name        string    `json:"name"`
	CaughtAt    time.Time `json:"caught_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	Visible     bool      `json:"visible"`
	Exceptional bool      `json:"exceptional"`
}

func ItemFromCollected(c collection.CollectedItem) Item {
	return Item{
		ID:          c.ID,
		ItemID:      c.ItemID,
		Rarity:      c.Rarity.String(),
		Size:        c.Size.String(),
		Name:        c.Name,
		CaughtAt:    c.CaughtAt.UTC(),
		ModifiedAt:  c.ModifiedAt.UTC(),
		Visible:     c.Visible,
		Exceptional: c.Exceptional,
	}
}

// Collected converts back, rejecting unknown rarity or size names.
func (i Item) Collected() (collection.CollectedItem, error) {
	r, err := catalog.ParseRarity(i.Rarity)
	if err != nil {
		return collection.CollectedItem{}, err
	}
	sz, err := catalog.ParseSize(i.Size)
	if err != nil {
		return collection.CollectedItem{}, err
	}
	return collection.CollectedItem{
		ID:          i.ID,
		ItemID:      i.ItemID,
		Rarity:      r,
		Size:        sz,
		Name:        i.Name,
		CaughtAt:    i.CaughtAt,
		ModifiedAt:  i.ModifiedAt,
		Visible:     i.Visible,
		Exceptional: i.Exceptional,
	}, nil
}

func ItemsFromCollected(in []collection.CollectedItem) []Item {
	out := make([]Item, 0, len(in))
	for _, c := range in {
		out = append(out, ItemFromCollected(c))
	}
	return out
}

func CollectedFromItems(in []Item) ([]collection.CollectedItem, error) {
	out := make([]collection.CollectedItem, 0, len(in))
	for _, i := range in {
		c, err := i.Collected()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
