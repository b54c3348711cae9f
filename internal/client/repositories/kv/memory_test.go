package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Basics(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	v, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Set(ctx, "k", []byte("v")))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.Delete(ctx, "k"))

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1")}, m)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'x'

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
}

func TestMemoryRepository_FaultInjection(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	quota := errors.New("quota exceeded")

	r.Fail(OpSet, "token", quota)
	require.ErrorIs(t, r.Set(ctx, "token", []byte("t")), quota)
	require.NoError(t, r.Set(ctx, "openid", []byte("o")), "fault is scoped to its key")

	r.Fail(OpDelete, "", quota)
	require.ErrorIs(t, r.Delete(ctx, "openid"), quota)

	r.Heal()
	require.NoError(t, r.Set(ctx, "token", []byte("t")))
	require.NoError(t, r.Delete(ctx, "openid"))
}

func TestMemoryRepository_IsNotBatch(t *testing.T) {
	var repo Repository = NewMemoryRepository()
	_, ok := repo.(Batch)
	assert.False(t, ok)
}
