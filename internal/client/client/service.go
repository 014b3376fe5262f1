package client

import (
	"context"

	"github.com/dmitrijs2005/focustank/internal/collection"
)

// Client is the remote contract used by the auth service and the sync
// coordinator.
type Client interface {
	Close() error
	Register(ctx context.Context, username string, salt []byte, key []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	// Login returns the server-side user id.
	Login(ctx context.Context, username string, key []byte) (string, error)
	Logout()
	Ping(ctx context.Context) error
	FetchAll(ctx context.Context, userID string) ([]collection.CollectedItem, error)
	ReplaceAll(ctx context.Context, userID string, items []collection.CollectedItem) error
}
