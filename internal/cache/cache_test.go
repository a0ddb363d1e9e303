package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheNeverHits(t *testing.T) {
	var c *Redis
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []string{"a"}, time.Minute))
	var out []string
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}

func TestKeysArePrefixed(t *testing.T) {
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), WithPrefix("test:"))
	defer c.Close()
	assert.Equal(t, "test:companies", c.key("companies"))
}
