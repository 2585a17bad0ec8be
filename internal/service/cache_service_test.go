package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/practicum-journal-api/pkg/errors"
)

type jsonCacheStub struct {
	items  map[string][]byte
	getErr error
	reads  int
}

func (c *jsonCacheStub) Get(_ context.Context, key string, dest interface{}) error {
	c.reads++
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *jsonCacheStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *jsonCacheStub) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func TestCacheServiceDisabledNeverTouchesRepository(t *testing.T) {
	repo := &jsonCacheStub{items: map[string][]byte{"k": []byte(`1`)}}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	var dest int
	hit, err := cache.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, repo.reads)
	assert.NoError(t, cache.Set(context.Background(), "k", 2, 0))
	assert.Equal(t, []byte(`1`), repo.items["k"])
}

func TestRememberLoadsOnceAndServesCache(t *testing.T) {
	repo := &jsonCacheStub{items: map[string][]byte{}}
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	first, err := remember(context.Background(), cache, "list", 0, load)
	require.NoError(t, err)
	second, err := remember(context.Background(), cache, "list", 0, load)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestRememberDoesNotStoreFailures(t *testing.T) {
	repo := &jsonCacheStub{items: map[string][]byte{}}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	_, err := remember(context.Background(), cache, "list", 0, func(context.Context) ([]string, error) {
		return nil, errors.New("store down")
	})
	require.Error(t, err)
	assert.Empty(t, repo.items)
}

func TestRememberFallsBackWhenCacheBackendFails(t *testing.T) {
	repo := &jsonCacheStub{items: map[string][]byte{}, getErr: errors.New("redis timeout")}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	value, err := remember(context.Background(), cache, "n", 0, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, value)
}

func TestRememberWithoutCache(t *testing.T) {
	value, err := remember[int](context.Background(), nil, "n", 0, func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, value)
}
