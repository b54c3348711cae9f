package users

import (
	"context"
	"maps"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
)

type Repository interface {
	Get(ctx context.Context, openid string) (*User, error)
	Put(ctx context.Context, user *User) error
}

// MemoryRepository keeps users in memory. Values are copied in and out.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

// Get returns common.ErrorNotFound for unknown openids.
func (r *MemoryRepository) Get(_ context.Context, openid string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[openid]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryRepository) Put(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.OpenID] = copyUser(user)
	return nil
}

func copyUser(u *User) *User {
	c := *u
	c.Profile = maps.Clone(u.Profile)
	return &c
}
