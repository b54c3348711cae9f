package kv

import (
	"context"
	"maps"
	"sync"
)

// Op names a store primitive for fault injection.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpList   Op = "list"
)

type fault struct {
	op  Op
	key string
}

// MemoryRepository is an in-process Repository. It does not implement Batch:
// every key is written on its own, like a plain device storage API.
type MemoryRepository struct {
	mu     sync.Mutex
	data   map[string][]byte
	faults map[fault]error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:   make(map[string][]byte),
		faults: make(map[fault]error),
	}
}

// Fail makes op on key return err until Heal is called. An empty key
// matches every key.
func (r *MemoryRepository) Fail(op Op, key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[fault{op: op, key: key}] = err
}

// Heal removes every injected fault.
func (r *MemoryRepository) Heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.faults)
}

func (r *MemoryRepository) failure(op Op, key string) error {
	if err, ok := r.faults[fault{op: op, key: key}]; ok {
		return err
	}
	return r.faults[fault{op: op}]
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(OpGet, key); err != nil {
		return nil, err
	}
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(OpSet, key); err != nil {
		return err
	}
	r.data[key] = append([]byte{}, value...)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(OpDelete, key); err != nil {
		return err
	}
	delete(r.data, key)
	return nil
}

// List returns a snapshot of every stored key.
func (r *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failure(OpList, ""); err != nil {
		return nil, err
	}
	return maps.Clone(r.data), nil
}
