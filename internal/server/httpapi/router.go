// Package httpapi is the read-only HTTP surface of the server: a health
// probe and a JSON export of the signed-in user's collection.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/focustank/internal/api"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/logging"
)

type TokenValidator interface {
	UserIDFromAccessToken(token string) (string, error)
}

type CollectionReader interface {
	FetchAll(ctx context.Context, userID string) ([]api.Item, error)
}

// Pinger reports whether a backing store is reachable. *sql.DB fits.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Config struct {
	Tokens         TokenValidator
	Collections    CollectionReader
	DB             Pinger
	AllowedOrigins []string
	Logger         logging.Logger
}

type handler struct {
	tokens      TokenValidator
	collections CollectionReader
	db          Pinger
	log         logging.Logger
}

type ctxKey string

const userIDKey ctxKey = "userID"

// CollectionResponse is the body of GET /api/v1/collection.
type CollectionResponse struct {
	UserID     string     `json:"user_id"`
	ExportedAt time.Time  `json:"exported_at"`
	Items      []api.Item `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewRouter(cfg Config) *chi.Mux {
	h := &handler{
		tokens:      cfg.Tokens,
		collections: cfg.Collections,
		db:          cfg.DB,
		log:         cfg.Logger.With("module", "http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.bearerAuth)
			r.Get("/collection", h.collection)
		})
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) collection(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)

	items, err := h.collections.FetchAll(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "collection export failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: common.ErrInternal.Error()})
		return
	}
	if items == nil {
		items = []api.Item{}
	}

	writeJSON(w, http.StatusOK, CollectionResponse{UserID: userID, ExportedAt: time.Now().UTC(), Items: items})
}

func (h *handler) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing token"})
			return
		}

		userID, err := h.tokens.UserIDFromAccessToken(token)
		if err != nil {
			msg := common.ErrInvalidToken.Error()
			if errors.Is(err, common.ErrTokenExpired) {
				msg = common.ErrTokenExpired.Error()
			}
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msg})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func (h *handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Debug(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
