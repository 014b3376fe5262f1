// Package services contains the application services of the focustank
// client. This file defines the authentication service: online and offline
// login, registration, logout and liveness probes. Every transition is
// published on the auth broadcaster so the sync coordinator can follow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/focustank/internal/authstate"
	"github.com/dmitrijs2005/focustank/internal/client/client"
	"github.com/dmitrijs2005/focustank/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/cryptox"
	"github.com/dmitrijs2005/focustank/internal/dbx"
	"github.com/dmitrijs2005/focustank/internal/logging"
)

// ErrLocalDataNotAvailable is returned by OfflineLogin when no account has
// signed in on this device yet.
var ErrLocalDataNotAvailable = errors.New("local data unavailable")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - OnlineLogin: authenticate against the server, persist offline auth data
//     and publish Authenticated.
//   - OfflineLogin: verify credentials against locally cached data. Sync stays
//     off until an online login succeeds.
//   - Logout: drop tokens and publish Unauthenticated, optionally asking
//     listeners to wipe local data.
type AuthService interface {
	OfflineLogin(ctx context.Context, username string, password []byte) error
	OnlineLogin(ctx context.Context, username string, password []byte) (string, error)
	Register(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context, wipe bool) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	ClearOfflineData(ctx context.Context) error
	// CachedUser reports the last account that signed in online here.
	CachedUser(ctx context.Context) (username string, userID string, err error)
}

type authService struct {
	client client.Client
	db     *sql.DB
	events *authstate.Broadcaster
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(c client.Client, db *sql.DB, events *authstate.Broadcaster, l logging.Logger) AuthService {
	return &authService{client: c, db: db, events: events, log: l.With("module", "auth")}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// OfflineLogin derives the verifier from the password and the locally
// cached salt and compares it with the cached verifier.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) error {
	repo := a.getMetadataRepo(a.db)

	savedUsername, err := repo.Get(ctx, string(common.MetaUserName))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	if savedUsername == nil {
		return ErrLocalDataNotAvailable
	}
	if string(savedUsername) != username {
		return common.ErrUnauthorized
	}

	salt, err := repo.Get(ctx, string(common.MetaSalt))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	verifier, err := repo.Get(ctx, string(common.MetaVerifier))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	if salt == nil || verifier == nil {
		return ErrLocalDataNotAvailable
	}

	if !cryptox.CheckVerifier(verifier, cryptox.VerifierFor(password, salt)) {
		return common.ErrUnauthorized
	}
	a.log.Info(ctx, "offline login", "username", username)
	return nil
}

// OnlineLogin authenticates against the server, saves offline metadata
// and announces the session.
func (a *authService) OnlineLogin(ctx context.Context, userName string, password []byte) (string, error) {
	salt, err := a.client.GetSalt(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("get salt error: %w", err)
	}

	verifier := cryptox.VerifierFor(password, salt)

	userID, err := a.client.Login(ctx, userName, verifier)
	if err != nil {
		return "", fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, userName, userID, salt, verifier); err != nil {
		return "", fmt.Errorf("offline data saving error: %w", err)
	}

	a.log.Info(ctx, "online login", "username", userName, "user_id", userID)
	a.events.Publish(authstate.Event{State: authstate.Authenticated, UserID: userID})
	return userID, nil
}

// saveOfflineData persists what offline login needs in one transaction.
func (a *authService) saveOfflineData(ctx context.Context, userName, userID string, salt, verifier []byte) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := repo.Set(ctx, string(common.MetaUserName), []byte(userName)); err != nil {
			return err
		}
		if err := repo.Set(ctx, string(common.MetaUserID), []byte(userID)); err != nil {
			return err
		}
		if err := repo.Set(ctx, string(common.MetaSalt), salt); err != nil {
			return err
		}
		return repo.Set(ctx, string(common.MetaVerifier), verifier)
	})
}

// Register creates a new account with a random salt. The password itself
// is never sent.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	if username == "" || len(password) == 0 {
		return fmt.Errorf("%w: username and password are required", common.ErrInvalidName)
	}
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	verifier := cryptox.VerifierFor(password, salt)

	if err := a.client.Register(ctx, username, salt, verifier); err != nil {
		return err
	}
	a.log.Info(ctx, "registered", "username", username)
	return nil
}

// Logout forgets the tokens and announces the transition. With wipe the
// cached credentials go too; listeners decide what else to drop.
func (a *authService) Logout(ctx context.Context, wipe bool) error {
	a.client.Logout()
	a.events.Publish(authstate.Event{State: authstate.Unauthenticated, Wipe: wipe})
	if wipe {
		if err := a.ClearOfflineData(ctx); err != nil {
			return err
		}
	}
	a.log.Info(ctx, "logged out", "wipe", wipe)
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// ClearOfflineData wipes cached credentials. Stats and the active
// commitment are kept.
func (a *authService) ClearOfflineData(ctx context.Context) error {
	repo := a.getMetadataRepo(a.db)
	for _, k := range []common.MetadataKey{common.MetaUserName, common.MetaUserID, common.MetaSalt, common.MetaVerifier} {
		if err := repo.Delete(ctx, string(k)); err != nil {
			return fmt.Errorf("%w: %v", common.ErrPersistence, err)
		}
	}
	return nil
}

func (a *authService) CachedUser(ctx context.Context) (string, string, error) {
	repo := a.getMetadataRepo(a.db)
	name, err := metadata.GetString(ctx, repo, common.MetaUserName)
	if err != nil {
		return "", "", err
	}
	id, err := metadata.GetString(ctx, repo, common.MetaUserID)
	if err != nil {
		return "", "", err
	}
	return name, id, nil
}
