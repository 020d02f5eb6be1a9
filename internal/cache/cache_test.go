package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New()

	c.Set("conversations:alice", []string{"c1"}, ConversationsTTL)

	v, ok := c.Get("conversations:alice")
	assert.True(t, ok)
	assert.Equal(t, []string{"c1"}, v)

	_, ok = c.Get("conversations:bob")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	c.Set("unread:alice", int64(3), UnreadTTL)

	v, ok := c.Get("unread:alice")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	now = now.Add(UnreadTTL + time.Second)
	_, ok = c.Get("unread:alice")
	assert.False(t, ok, "entry past its freshness deadline must miss")
}

func TestCache_InvalidateByPrefix(t *testing.T) {
	c := New()
	c.Set("messages:c1", "a", MessagesTTL)
	c.Set("messages:c2", "b", MessagesTTL)
	c.Set("conversations:alice", "c", ConversationsTTL)

	dropped := c.Invalidate("messages:")
	assert.Equal(t, 2, dropped)

	_, ok := c.Get("messages:c1")
	assert.False(t, ok)
	_, ok = c.Get("messages:c2")
	assert.False(t, ok)
	_, ok = c.Get("conversations:alice")
	assert.True(t, ok, "other prefixes survive")

	assert.Equal(t, 0, c.Invalidate("messages:"))
}

func TestCache_Flush(t *testing.T) {
	c := New()
	c.Set("messages:c1", "a", MessagesTTL)
	c.Set("unread:alice", int64(1), UnreadTTL)

	c.Flush()

	_, ok := c.Get("messages:c1")
	assert.False(t, ok)
	_, ok = c.Get("unread:alice")
	assert.False(t, ok)
}
