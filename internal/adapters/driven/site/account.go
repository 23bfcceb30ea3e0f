package site

import (
	"context"
	"sync"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Ensure ImportUser implements the interface.
var _ driven.CurrentUser = (*ImportUser)(nil)

// ImportUser is the account named by the import user email setting.
// The user entity is looked up once and the result reused.
type ImportUser struct {
	store driven.EntityStore
	email string

	once    sync.Once
	account domain.Account
}

// NewImportUser creates the current user for imports run as email.
// An empty email runs imports anonymously.
func NewImportUser(store driven.EntityStore, email string) *ImportUser {
	return &ImportUser{store: store, email: email}
}

// Current returns the import account, or an anonymous account when no
// user entity carries the configured email.
func (u *ImportUser) Current(ctx context.Context) domain.Account {
	u.once.Do(func() {
		if u.email == "" || u.store == nil {
			return
		}
		users, err := u.store.LoadByProperties(ctx, "user", map[string]any{"mail": u.email})
		if err != nil {
			logger.Warn("look up import user %s: %v", u.email, err)
			return
		}
		if len(users) == 0 {
			logger.Warn("import user %s not found, importing anonymously", u.email)
			return
		}
		u.account = domain.Account{ID: users[0].ID, Email: u.email, Authenticated: true}
	})
	return u.account
}
