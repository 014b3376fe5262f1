// Package repomanager hands out repositories bound to a connection or a
// transaction, so services can run several of them atomically.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/focustank/internal/dbx"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/items"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/focustank/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Items(db dbx.DBTX) items.Repository
}
