package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pointsdash/pkg/config"
)

func TestLookupStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	_, ok, err := client.Lookup(ctx, "pd:fetch:u1:abc")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is a miss, not an error")

	require.NoError(t, client.Store(ctx, "pd:fetch:u1:abc", []byte(`{"count":1}`), 30*time.Second))
	got, ok, err := client.Lookup(ctx, "pd:fetch:u1:abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"count":1}`, string(got))
	assert.Equal(t, 30*time.Second, mock.ttls["pd:fetch:u1:abc"])

	require.NoError(t, client.Del(ctx, "pd:fetch:u1:abc"))
	_, ok, _ = client.Lookup(ctx, "pd:fetch:u1:abc")
	assert.False(t, ok)
}

func TestStoreRejectsNonPositiveTTL(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	assert.Error(t, client.Store(context.Background(), "k", []byte("v"), 0))
}

func TestFetchKey(t *testing.T) {
	client := &Client{}
	a := client.FetchKey("user-1", "/events?limit=100&page=1")
	b := client.FetchKey("user-1", "/events?limit=100&page=2")
	c := client.FetchKey("user-2", "/events?limit=100&page=1")

	assert.True(t, strings.HasPrefix(a, "pd:fetch:user-1:"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, client.FetchKey("user-1", "/events?limit=100&page=1"))
	assert.Equal(t, "pd:fetch", client.buildKey(fetchPrefix, " ", ""))
}

func TestNilClientIsNotInitialized(t *testing.T) {
	var client *Client
	_, _, err := client.Lookup(context.Background(), "k")
	assert.ErrorIs(t, err, errNotInitialized)
	assert.ErrorIs(t, client.Ping(context.Background()), errNotInitialized)
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6380", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for i := 1; i <= 3; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "dashboard:u1", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
		assert.Equal(t, i <= 2, allowed)
	}
	assert.Equal(t, time.Minute, mock.ttls["pd:rl:dashboard:u1"])
	assert.Equal(t, 1, mock.expires["pd:rl:dashboard:u1"], "ttl is set once per window")
}

type mockCmdable struct {
	data     map[string]string
	counters map[string]int64
	ttls     map[string]time.Duration
	expires  map[string]int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:     make(map[string]string),
		counters: make(map[string]int64),
		ttls:     make(map[string]time.Duration),
		expires:  make(map[string]int),
	}
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	return redis.NewIntResult(m.counters[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.ttls[key] = expiration
	m.expires[key]++
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
