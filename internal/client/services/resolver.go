// Package services contains the session resolver state machine and the
// read-only identity facade built on top of it.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/session"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// ConsentProvider runs the interactive credential-collection step of a
// social login. Returning ErrConsentDenied aborts the login.
type ConsentProvider interface {
	RequestConsent(ctx context.Context) (models.ConsentProfile, error)
}

// Login outcome labels.
const (
	resultSuccess     = "success"
	resultRejected    = "rejected"
	resultUnreachable = "unreachable"
	resultDenied      = "denied"
	resultSuperseded  = "superseded"
)

// SessionResolver drives login, guest login, startup auto-login and logout.
//
// Network operations run one at a time; callers queue on a semaphore that
// honours their context. Logout does not queue: it bumps the epoch, and an
// operation that observes a changed epoch on return drops the backend's
// answer and reports ErrSuperseded.
type SessionResolver struct {
	gateway client.Gateway
	cache   *session.Cache
	consent ConsentProvider
	logger  logging.Logger
	metrics metrics.Recorder

	maxUnverifiedTrust time.Duration
	now                func() time.Time

	ops *semaphore.Weighted

	mu      sync.Mutex
	epoch   uint64
	state   models.State
	current *models.Identity
}

type ResolverOption func(*SessionResolver)

// WithMaxUnverifiedTrust bounds how long a session that could not be verified
// at startup keeps being trusted, measured from its last confirmation. Zero
// trusts it until the next verification or logout.
func WithMaxUnverifiedTrust(d time.Duration) ResolverOption {
	return func(r *SessionResolver) { r.maxUnverifiedTrust = d }
}

func WithMetrics(m metrics.Recorder) ResolverOption {
	return func(r *SessionResolver) { r.metrics = m }
}

func WithClock(now func() time.Time) ResolverOption {
	return func(r *SessionResolver) { r.now = now }
}

func NewSessionResolver(gw client.Gateway, cache *session.Cache, consent ConsentProvider, l logging.Logger, opts ...ResolverOption) *SessionResolver {
	r := &SessionResolver{
		gateway: gw,
		cache:   cache,
		consent: consent,
		logger:  l.With("module", "session_resolver"),
		metrics: metrics.Nop{},
		now:     time.Now,
		ops:     semaphore.NewWeighted(1),
		state:   models.StateAnonymous,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// State returns the current state.
func (r *SessionResolver) State() models.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns a copy of the resolved identity, or nil when none.
func (r *SessionResolver) Current() *models.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}

// pending is what an operation needs to commit or roll back.
type pending struct {
	epoch     uint64
	prevState models.State
	prev      *models.Identity
}

// begin enters a transitional state.
func (r *SessionResolver) begin(state models.State, current *models.Identity) pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := pending{epoch: r.epoch, prevState: r.state, prev: r.current}
	r.state = state
	if current != nil {
		r.current = current.Clone()
	}
	return p
}

// restore undoes begin unless a logout intervened.
func (r *SessionResolver) restore(p pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != p.epoch {
		return
	}
	r.state = p.prevState
	r.current = p.prev
}

// commit makes id the current identity and writes it through the cache.
func (r *SessionResolver) commit(ctx context.Context, p pending, id *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != p.epoch {
		return ErrSuperseded
	}
	r.cache.Write(ctx, id)
	r.current = id.Clone()
	r.state = models.StateAuthenticated
	return nil
}

func (r *SessionResolver) acquire(ctx context.Context) error {
	if err := r.ops.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for session operation: %w", err)
	}
	return nil
}

// Login runs the consent step and resolves a social login. On any failure
// the previous state is kept and nothing is persisted.
func (r *SessionResolver) Login(ctx context.Context) (*models.Identity, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.ops.Release(1)

	p := r.begin(models.StateAuthenticating, nil)

	consent, err := r.consent.RequestConsent(ctx)
	if err != nil {
		r.restore(p)
		if errors.Is(err, ErrConsentDenied) {
			r.metrics.RecordLogin(common.LoginTypeWechat, resultDenied)
			r.logger.Info(ctx, "login cancelled", "reason", "consent denied")
			return nil, ErrConsentDenied
		}
		return nil, fmt.Errorf("consent: %w", err)
	}

	res := r.gateway.ResolveIdentity(ctx, client.ResolveRequest{
		LoginType: common.LoginTypeWechat,
		Profile:   &consent,
	})
	data, err := r.identityData(res)
	if err != nil {
		r.restore(p)
		r.recordLoginFailure(ctx, common.LoginTypeWechat, err)
		return nil, err
	}

	id := &models.Identity{
		OpenID:     data.OpenID,
		Token:      data.Token,
		Profile:    models.Backfill(models.Overlay(consent.Profile(), data.UserInfo), consent.GenderCode),
		IsNewUser:  data.IsNewUser,
		VerifiedAt: r.now().UTC(),
	}
	if err := r.commit(ctx, p, id); err != nil {
		r.metrics.RecordLogin(common.LoginTypeWechat, resultSuperseded)
		return nil, err
	}
	r.metrics.RecordLogin(common.LoginTypeWechat, resultSuccess)
	r.logger.Info(ctx, "logged in", "openid", id.OpenID, "new_user", id.IsNewUser)

	if saved := r.gateway.SaveUserInfo(ctx, id.Token, id.Profile); saved.Kind != client.ResultSuccess {
		r.logger.Warn(ctx, "profile upload after login failed", "result", saved.Kind.String(), "message", saved.Message)
	}

	return id.Clone(), nil
}

// GuestLogin resolves a guest identity. No consent step is needed.
func (r *SessionResolver) GuestLogin(ctx context.Context) (*models.Identity, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.ops.Release(1)

	p := r.begin(models.StateAuthenticating, nil)

	res := r.gateway.ResolveIdentity(ctx, client.ResolveRequest{
		LoginType: common.LoginTypeGuest,
		Profile:   &models.ConsentProfile{},
	})
	data, err := r.identityData(res)
	if err != nil {
		r.restore(p)
		r.recordLoginFailure(ctx, common.LoginTypeGuest, err)
		return nil, err
	}

	id := &models.Identity{
		OpenID:     data.OpenID,
		Token:      data.Token,
		Profile:    models.BackfillGuest(data.UserInfo),
		IsGuest:    true,
		IsNewUser:  data.IsNewUser,
		VerifiedAt: r.now().UTC(),
	}
	if err := r.commit(ctx, p, id); err != nil {
		r.metrics.RecordLogin(common.LoginTypeGuest, resultSuperseded)
		return nil, err
	}
	r.metrics.RecordLogin(common.LoginTypeGuest, resultSuccess)
	r.logger.Info(ctx, "guest logged in", "openid", id.OpenID)

	return id.Clone(), nil
}

// AutoLogin verifies the cached session at startup. It never interrupts the
// caller: ErrNotAuthenticated means nothing was cached, and every backend
// outcome is folded into the returned decision.
//
//   - Confirmed: the cached identity becomes current.
//   - Rejected: the session is logged out.
//   - Unknown: the cached identity is trusted, unless it was last confirmed
//     longer ago than the configured window, in which case the resolver stays
//     anonymous and storage is left alone for the next attempt.
func (r *SessionResolver) AutoLogin(ctx context.Context) (models.TrustDecision, error) {
	if err := r.acquire(ctx); err != nil {
		return models.TrustUnknown, err
	}
	defer r.ops.Release(1)

	cached, ok := r.cache.Read(ctx)
	if !ok {
		r.logger.Debug(ctx, "no cached session")
		return models.TrustUnknown, ErrNotAuthenticated
	}

	p := r.begin(models.StateTrustPending, cached)

	res := r.gateway.ResolveIdentity(ctx, client.ResolveRequest{
		LoginType: common.LoginTypeAuto,
		Token:     cached.Token,
	})
	decision := trustDecision(res)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.epoch != p.epoch {
		return decision, ErrSuperseded
	}
	r.metrics.RecordTrustDecision(decision.String())
	r.metrics.RecordLogin(common.LoginTypeAuto, loginResult(decision))

	switch decision {
	case models.TrustConfirmed:
		cached.VerifiedAt = r.now().UTC()
		r.cache.Write(ctx, cached)
		r.current = cached
		r.state = models.StateAuthenticated
		r.logger.Info(ctx, "session confirmed", "openid", cached.OpenID)

	case models.TrustRejected:
		r.logger.Info(ctx, "session rejected by backend", "message", res.Message)
		r.logoutLocked(ctx)

	default:
		if r.trustExpired(cached) {
			r.logger.Warn(ctx, "unverified session past trust window", "verified_at", cached.VerifiedAt)
			r.cache.Forget()
			r.current = nil
			r.state = models.StateAnonymous
			break
		}
		r.logger.Warn(ctx, "backend unreachable, trusting cached session", "error", errString(res.Err))
		r.current = cached
		r.state = models.StateAuthenticated
	}

	return decision, nil
}

// Logout clears every cache tier and returns to anonymous. It needs no
// backend call, never fails and is idempotent. Operations waiting on the
// backend when it runs are superseded.
func (r *SessionResolver) Logout(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logoutLocked(ctx)
}

func (r *SessionResolver) logoutLocked(ctx context.Context) {
	r.epoch++
	if err := r.cache.Clear(ctx); err != nil {
		r.logger.Warn(ctx, "logout left storage behind", "error", fmt.Errorf("%w: %w", ErrStorageFailure, err).Error())
	}
	r.current = nil
	r.state = models.StateAnonymous
	r.metrics.RecordLogout()
}

// invalidateLocal drops the in-process session without touching storage.
// It is how the facade reacts to the persisted flag vanishing underneath.
func (r *SessionResolver) invalidateLocal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.cache.Forget()
	r.current = nil
	r.state = models.StateAnonymous
}

// UpdateProfile pushes the edit to the backend and, once it is confirmed,
// merges the confirmed fields into the session. On failure nothing changes.
func (r *SessionResolver) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Identity, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.ops.Release(1)

	cur, epoch, err := r.authenticated()
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return cur, nil
	}

	edited := upd.Apply(cur.Profile)
	res := r.gateway.SaveUserInfo(ctx, cur.Token, edited)
	switch res.Kind {
	case client.ResultSuccess:
	case client.ResultFailure:
		return nil, r.rejected(res)
	default:
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, res.Err)
	}

	if res.Profile != nil {
		edited = models.Overlay(edited, *res.Profile)
	}
	edited.BMI = models.ComputeBMI(edited.Height, edited.Weight)
	next := cur.Clone()
	next.Profile = edited

	if err := r.commit(ctx, pending{epoch: epoch}, next); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "profile updated", "openid", next.OpenID)
	return next.Clone(), nil
}

// SyncProfile refreshes the session profile from the backend, backfilling
// defaults. Backend failures are logged and swallowed.
func (r *SessionResolver) SyncProfile(ctx context.Context) error {
	if err := r.acquire(ctx); err != nil {
		return err
	}
	defer r.ops.Release(1)

	cur, epoch, err := r.authenticated()
	if err != nil {
		return err
	}

	res := r.gateway.GetUserInfo(ctx, cur.Token)
	if res.Kind != client.ResultSuccess || res.Profile == nil {
		r.logger.Warn(ctx, "profile sync failed", "result", res.Kind.String(), "message", res.Message, "error", errString(res.Err))
		return nil
	}

	next := cur.Clone()
	next.Profile = models.Backfill(models.Overlay(cur.Profile, *res.Profile), 0)
	if next.Equal(cur) {
		return nil
	}
	return r.commit(ctx, pending{epoch: epoch}, next)
}

func (r *SessionResolver) authenticated() (*models.Identity, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != models.StateAuthenticated || !r.current.Valid() {
		return nil, 0, ErrNotAuthenticated
	}
	return r.current.Clone(), r.epoch, nil
}

func (r *SessionResolver) trustExpired(id *models.Identity) bool {
	if r.maxUnverifiedTrust <= 0 {
		return false
	}
	return id.VerifiedAt.IsZero() || r.now().Sub(id.VerifiedAt) > r.maxUnverifiedTrust
}

// identityData unpacks a wechat or guest resolution.
func (r *SessionResolver) identityData(res client.Result) (*client.IdentityData, error) {
	switch res.Kind {
	case client.ResultSuccess:
		if res.Data == nil || res.Data.OpenID == "" || res.Data.Token == "" {
			return nil, &RejectedError{Message: res.Message, Err: ErrMalformedResponse}
		}
		return res.Data, nil
	case client.ResultFailure:
		return nil, r.rejected(res)
	default:
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, res.Err)
	}
}

func (r *SessionResolver) rejected(res client.Result) error {
	cause := res.Err
	if errors.Is(cause, client.ErrMalformedResponse) {
		cause = ErrMalformedResponse
	}
	return &RejectedError{Message: res.Message, Err: cause}
}

func (r *SessionResolver) recordLoginFailure(ctx context.Context, loginType string, err error) {
	result := resultRejected
	if errors.Is(err, ErrNetworkUnavailable) {
		result = resultUnreachable
	}
	r.metrics.RecordLogin(loginType, result)
	r.logger.Warn(ctx, "login failed", "type", loginType, "error", err.Error())
}

func trustDecision(res client.Result) models.TrustDecision {
	switch res.Kind {
	case client.ResultSuccess:
		return models.TrustConfirmed
	case client.ResultFailure:
		return models.TrustRejected
	default:
		return models.TrustUnknown
	}
}

func loginResult(d models.TrustDecision) string {
	switch d {
	case models.TrustConfirmed:
		return resultSuccess
	case models.TrustRejected:
		return resultRejected
	default:
		return resultUnreachable
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
