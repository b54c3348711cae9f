package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/healthkeeper/internal/client/session"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
)

// IdentityFacade is the read API the rest of the application uses to ask
// who the current user is.
type IdentityFacade struct {
	resolver *SessionResolver
	store    kv.Repository
	logger   logging.Logger
	now      func() time.Time

	mu          sync.Mutex
	lastAnonMS  int64
	unsavedAnon string
}

func NewIdentityFacade(r *SessionResolver, store kv.Repository, l logging.Logger) *IdentityFacade {
	return &IdentityFacade{
		resolver: r,
		store:    store,
		logger:   l.With("module", "identity_facade"),
		now:      time.Now,
	}
}

// IsLoggedIn reports whether the resolver holds an authenticated session.
// When the persisted login flag was removed behind the resolver's back the
// in-process session is dropped and false is returned. An unreadable store,
// or one the cache failed to write, leaves the in-process session
// authoritative.
func (f *IdentityFacade) IsLoggedIn(ctx context.Context) bool {
	if f.resolver.State() != models.StateAuthenticated {
		return false
	}
	// After a failed write-through the flag is absent because of us.
	if f.resolver.cache.Unpersisted() {
		return true
	}

	persisted, err := f.resolver.cache.Persisted(ctx)
	if err != nil {
		f.logger.Warn(ctx, "cannot read persisted login flag", "error", err.Error())
		return true
	}
	if !persisted {
		f.logger.Warn(ctx, "persisted session vanished, dropping in-process session")
		f.resolver.invalidateLocal()
		return false
	}
	return true
}

// UserInfo returns the current profile.
func (f *IdentityFacade) UserInfo(ctx context.Context) (*models.Profile, bool) {
	if !f.IsLoggedIn(ctx) {
		return nil, false
	}
	cur := f.resolver.Current()
	if cur == nil {
		return nil, false
	}
	return &cur.Profile, true
}

// UserID returns the openid of the current session, or else a persisted
// anonymous id of the form guest_<unix millis>, created on first use. While
// a login or verification is in flight the identity it started from is
// reported.
func (f *IdentityFacade) UserID(ctx context.Context) string {
	if f.IsLoggedIn(ctx) || f.resolving() {
		if cur := f.resolver.Current(); cur.Valid() {
			return cur.OpenID
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	stored, err := f.store.Get(ctx, session.KeyUserID)
	if err != nil {
		f.logger.Warn(ctx, "cannot read anonymous id", "error", err.Error())
	}
	if len(stored) > 0 {
		f.unsavedAnon = ""
		return string(stored)
	}
	if f.unsavedAnon != "" {
		return f.unsavedAnon
	}

	id := f.newAnonymousID()
	if err := f.store.Set(ctx, session.KeyUserID, []byte(id)); err != nil {
		f.logger.Warn(ctx, "cannot persist anonymous id", "error", err.Error())
		f.unsavedAnon = id
	}
	return id
}

// resolving reports a re-login or startup verification in progress. The
// identity it started from stays current until the operation settles.
func (f *IdentityFacade) resolving() bool {
	switch f.resolver.State() {
	case models.StateAuthenticating, models.StateTrustPending:
		return true
	}
	return false
}

func (f *IdentityFacade) newAnonymousID() string {
	ms := f.now().UnixMilli()
	if ms <= f.lastAnonMS {
		ms = f.lastAnonMS + 1
	}
	f.lastAnonMS = ms
	return common.GuestIDPrefix + strconv.FormatInt(ms, 10)
}
