package grpc

import (
	"context"

	"github.com/dmitrijs2005/focustank/internal/api"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/server/models"
	"github.com/dmitrijs2005/focustank/internal/server/services"
)

// fakeUsers accepts the tokens "good-<user>" and "expired".
type fakeUsers struct {
	registerErr error
	loginErr    error
	refreshErr  error
	saltErr     error
}

func (f *fakeUsers) Register(_ context.Context, username string, _, _ []byte) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "id-" + username, UserName: username}, nil
}

func (f *fakeUsers) GetSalt(_ context.Context, username string) ([]byte, error) {
	if f.saltErr != nil {
		return nil, f.saltErr
	}
	return []byte("salt-" + username), nil
}

func (f *fakeUsers) Login(_ context.Context, username string, _ []byte) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{UserID: "id-" + username, AccessToken: "good-id-" + username, RefreshToken: "r1"}, nil
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{UserID: "u1", AccessToken: "good-u1", RefreshToken: "r2"}, nil
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	switch {
	case token == "expired":
		return "", common.ErrTokenExpired
	case len(token) > 5 && token[:5] == "good-":
		return token[5:], nil
	default:
		return "", common.ErrInvalidToken
	}
}

type fakeCollections struct {
	stored map[string][]api.Item
	err    error
}

func newFakeCollections() *fakeCollections {
	return &fakeCollections{stored: map[string][]api.Item{}}
}

func (f *fakeCollections) FetchAll(_ context.Context, userID string) ([]api.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stored[userID], nil
}

func (f *fakeCollections) ReplaceAll(_ context.Context, userID string, items []api.Item) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.stored[userID] = items
	return len(items), nil
}
