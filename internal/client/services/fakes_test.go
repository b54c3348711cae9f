package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/healthkeeper/internal/client/session"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/metrics"
)

// fakeGateway answers from canned results and records every call.
type fakeGateway struct {
	mu      sync.Mutex
	resolve map[string]client.Result
	save    client.Result
	get     client.Result

	resolveCalls []client.ResolveRequest
	saveCalls    []models.Profile
	saveTokens   []string
	getTokens    []string

	// When hold is set ResolveIdentity signals entered and waits for it.
	hold    chan struct{}
	entered chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{resolve: map[string]client.Result{}}
}

func (f *fakeGateway) ResolveIdentity(ctx context.Context, req client.ResolveRequest) client.Result {
	f.mu.Lock()
	f.resolveCalls = append(f.resolveCalls, req)
	res := f.resolve[req.LoginType]
	hold, entered := f.hold, f.entered
	f.mu.Unlock()

	if hold != nil {
		entered <- struct{}{}
		<-hold
	}
	return res
}

func (f *fakeGateway) SaveUserInfo(ctx context.Context, token string, p models.Profile) client.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls = append(f.saveCalls, p)
	f.saveTokens = append(f.saveTokens, token)
	return f.save
}

func (f *fakeGateway) GetUserInfo(ctx context.Context, token string) client.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getTokens = append(f.getTokens, token)
	return f.get
}

func (f *fakeGateway) Close() error { return nil }

func (f *fakeGateway) holdResolve() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
	f.entered = make(chan struct{}, 1)
}

func (f *fakeGateway) resolveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resolveCalls)
}

type fakeConsent struct {
	profile models.ConsentProfile
	err     error
	calls   int
}

func (f *fakeConsent) RequestConsent(context.Context) (models.ConsentProfile, error) {
	f.calls++
	return f.profile, f.err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	gw       *fakeGateway
	consent  *fakeConsent
	store    *kv.MemoryRepository
	global   *session.Global
	cache    *session.Cache
	clock    *fakeClock
	resolver *SessionResolver
	facade   *IdentityFacade
}

func newHarness(t *testing.T, opts ...ResolverOption) *harness {
	t.Helper()
	h := &harness{
		gw:      newFakeGateway(),
		consent: &fakeConsent{profile: models.ConsentProfile{NickName: "小王", AvatarURL: "https://a/b.png", City: "北京", GenderCode: 1}},
		store:   kv.NewMemoryRepository(),
		global:  session.NewGlobal(),
		clock:   &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.cache = session.NewCache(h.store, h.global, logging.Discard(), metrics.Nop{})
	opts = append([]ResolverOption{WithClock(h.clock.Now)}, opts...)
	h.resolver = NewSessionResolver(h.gw, h.cache, h.consent, logging.Discard(), opts...)
	h.facade = NewIdentityFacade(h.resolver, h.store, logging.Discard())
	h.facade.now = h.clock.Now
	return h
}

func wechatSuccess(openid, token string, info models.Profile) client.Result {
	return client.Succeeded(&client.IdentityData{OpenID: openid, Token: token, UserInfo: info, IsNewUser: true})
}

// seedSession persists an identity as a previous process run would have.
func (h *harness) seedSession(t *testing.T, id *models.Identity) {
	t.Helper()
	session.NewCache(h.store, session.NewGlobal(), logging.Discard(), nil).Write(context.Background(), id)
}

func cachedIdentity(verifiedAt time.Time) *models.Identity {
	return &models.Identity{
		OpenID:     "o-cached",
		Token:      "tok-cached",
		Profile:    models.Backfill(models.Profile{NickName: "旧用户"}, 2),
		VerifiedAt: verifiedAt,
	}
}

func (h *harness) storeEmpty(t *testing.T) bool {
	t.Helper()
	all, err := h.store.List(context.Background())
	if err != nil {
		t.Fatalf("list store: %v", err)
	}
	delete(all, session.KeyUserID)
	return len(all) == 0
}
