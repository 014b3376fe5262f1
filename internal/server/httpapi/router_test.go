package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/focustank/internal/api"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
)

type fakeTokens struct{}

func (fakeTokens) UserIDFromAccessToken(token string) (string, error) {
	switch token {
	case "good":
		return "u1", nil
	case "expired":
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrInvalidToken
	}
}

type fakeReader struct {
	items  []api.Item
	err    error
	userID string
}

func (f *fakeReader) FetchAll(_ context.Context, userID string) ([]api.Item, error) {
	f.userID = userID
	return f.items, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newRouter(reader *fakeReader, db Pinger) http.Handler {
	return NewRouter(Config{
		Tokens:         fakeTokens{},
		Collections:    reader,
		DB:             db,
		AllowedOrigins: []string{"https://tank.example"},
		Logger:         logging.Nop(),
	})
}

func do(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	for name, tc := range map[string]struct {
		db   Pinger
		code int
	}{
		"no db":   {nil, http.StatusOK},
		"db up":   {fakePinger{}, http.StatusOK},
		"db down": {fakePinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(&fakeReader{}, tc.db).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestCollection_ReturnsItems(t *testing.T) {
	reader := &fakeReader{items: []api.Item{{ID: "a", Rarity: "rare", Size: "small", Name: "Goldie"}}}
	rec := do(t, newRouter(reader, nil), "good")

	require.Equal(t, http.StatusOK, rec.Code)
	var body CollectionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "u1", body.UserID)
	assert.Equal(t, "u1", reader.userID)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Goldie", body.Items[0].Name)
	assert.False(t, body.ExportedAt.IsZero())
}

func TestCollection_EmptyIsArray(t *testing.T) {
	rec := do(t, newRouter(&fakeReader{}, nil), "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestCollection_Auth(t *testing.T) {
	h := newRouter(&fakeReader{}, nil)

	for token, msg := range map[string]string{
		"":        "missing token",
		"expired": common.ErrTokenExpired.Error(),
		"forged":  common.ErrInvalidToken.Error(),
	} {
		rec := do(t, h, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, token)
		var body errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, msg, body.Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCollection_ServiceError(t *testing.T) {
	rec := do(t, newRouter(&fakeReader{err: common.ErrInternal}, nil), "good")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	h := newRouter(&fakeReader{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/collection", nil)
	req.Header.Set("Origin", "https://tank.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://tank.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeReader{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
