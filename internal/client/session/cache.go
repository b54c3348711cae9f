package session

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/metrics"
	"go.uber.org/multierr"
)

// Storage operation labels for failure metrics.
const (
	opRead  = "read"
	opWrite = "write"
	opClear = "clear"
)

// Cache resolves the current identity through memory, Global and the
// persistent store, in that order. Every tier holds its own copy.
type Cache struct {
	mu     sync.Mutex
	memory *models.Identity
	// unpersisted is set while storage lags memory after a failed write.
	unpersisted bool

	global  *Global
	store   kv.Repository
	logger  logging.Logger
	metrics metrics.Recorder
}

func NewCache(store kv.Repository, global *Global, l logging.Logger, m metrics.Recorder) *Cache {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Cache{
		global:  global,
		store:   store,
		logger:  l.With("module", "session_cache"),
		metrics: m,
	}
}

// Read returns the first identity found. A hit in a colder tier is copied
// into every warmer tier it bypassed. Storage errors read as a miss.
func (c *Cache) Read(ctx context.Context) (*models.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.global.Load()
	if c.memory != nil {
		if g.Equal(c.memory) {
			return c.memory.Clone(), true
		}
		// Another consumer replaced or cleared Global.
		c.memory = nil
	}

	if g.Valid() {
		c.memory = g.Clone()
		return g, true
	}

	id, err := c.readPersisted(ctx)
	if err != nil {
		c.storageFailure(ctx, opRead, err)
		return nil, false
	}
	if id == nil {
		return nil, false
	}

	c.global.Store(id)
	c.memory = id.Clone()
	return id, true
}

// Write sets all three tiers. A persistent failure is logged and counted;
// memory and Global stay authoritative for the process lifetime.
func (c *Cache) Write(ctx context.Context, id *models.Identity) {
	if !id.Valid() {
		c.logger.Warn(ctx, "refusing to cache identity without openid")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = id.Clone()
	c.global.Store(id)

	if err := c.writePersisted(ctx, id); err != nil {
		c.unpersisted = true
		c.storageFailure(ctx, opWrite, err)
		return
	}
	c.unpersisted = false
}

// Clear empties every tier. Each step runs even when an earlier one fails;
// the failures are returned together.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = nil
	c.global.Reset()
	c.unpersisted = false

	// The flag goes first so a partly cleared group is already invalid.
	var errs error
	for _, key := range []string{KeyLoggedIn, KeyOpenID, KeyToken, KeyUserInfo, KeyUserID} {
		if err := c.store.Delete(ctx, key); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if errs != nil {
		c.storageFailure(ctx, opClear, errs)
	}
	return errs
}

// Persisted reports whether the persistent login flag is set.
func (c *Cache) Persisted(ctx context.Context) (bool, error) {
	v, err := c.store.Get(ctx, KeyLoggedIn)
	if err != nil {
		return false, err
	}
	return bytes.Equal(v, loggedInValue), nil
}

// Unpersisted reports whether the last Write failed to reach storage, so
// the persisted group is missing or older than memory.
func (c *Cache) Unpersisted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unpersisted
}

// Forget drops the memory and Global tiers, leaving storage untouched.
func (c *Cache) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory = nil
	c.global.Reset()
	c.unpersisted = false
}

func (c *Cache) readPersisted(ctx context.Context) (*models.Identity, error) {
	ok, err := c.Persisted(ctx)
	if err != nil || !ok {
		return nil, err
	}

	openid, err := c.store.Get(ctx, KeyOpenID)
	if err != nil {
		return nil, err
	}
	if len(openid) == 0 {
		c.logger.Warn(ctx, "ignoring persisted session without openid")
		return nil, nil
	}

	token, err := c.store.Get(ctx, KeyToken)
	if err != nil {
		return nil, err
	}

	blob, err := c.store.Get(ctx, KeyUserInfo)
	if err != nil {
		return nil, err
	}

	id := &models.Identity{OpenID: string(openid), Token: string(token)}
	if err := decodeUserInfo(blob, id); err != nil {
		c.logger.Warn(ctx, "ignoring persisted session", "error", err.Error())
		return nil, nil
	}
	return id, nil
}

// writePersisted stores the group for id. On failure it tries to invalidate
// whatever group is on disk, so a restart never resumes an older identity.
func (c *Cache) writePersisted(ctx context.Context, id *models.Identity) error {
	blob, err := encodeUserInfo(id)
	if err != nil {
		return multierr.Append(err, c.invalidatePersisted(ctx))
	}
	if err := c.storeGroup(ctx, id, blob); err != nil {
		return multierr.Append(err, c.invalidatePersisted(ctx))
	}
	return nil
}

// invalidatePersisted removes the first key a reader requires that it can.
func (c *Cache) invalidatePersisted(ctx context.Context) error {
	var errs error
	for _, key := range []string{KeyLoggedIn, KeyOpenID, KeyUserInfo} {
		err := c.store.Delete(ctx, key)
		if err == nil {
			return nil
		}
		errs = multierr.Append(errs, fmt.Errorf("invalidate %s: %w", key, err))
	}
	return errs
}

func (c *Cache) storeGroup(ctx context.Context, id *models.Identity, blob []byte) error {
	if b, ok := c.store.(kv.Batch); ok {
		return b.SetMany(ctx, map[string][]byte{
			KeyUserInfo: blob,
			KeyOpenID:   []byte(id.OpenID),
			KeyToken:    []byte(id.Token),
			KeyLoggedIn: loggedInValue,
		})
	}

	// Without transactions the flag is dropped before and set after the
	// fields, so an interrupted write leaves no valid group behind.
	if err := c.store.Delete(ctx, KeyLoggedIn); err != nil {
		return fmt.Errorf("delete %s: %w", KeyLoggedIn, err)
	}
	for _, kvp := range []struct {
		key   string
		value []byte
	}{
		{KeyUserInfo, blob},
		{KeyOpenID, []byte(id.OpenID)},
		{KeyToken, []byte(id.Token)},
		{KeyLoggedIn, loggedInValue},
	} {
		if err := c.store.Set(ctx, kvp.key, kvp.value); err != nil {
			return fmt.Errorf("set %s: %w", kvp.key, err)
		}
	}
	return nil
}

func (c *Cache) storageFailure(ctx context.Context, op string, err error) {
	c.metrics.RecordStorageFailure(op)
	for _, e := range multierr.Errors(err) {
		c.logger.Error(ctx, "session storage failure", "op", op, "error", e.Error())
	}
}
