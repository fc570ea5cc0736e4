package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSessionStoreExpiresIdleEntries(t *testing.T) {
	now := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Hour, nil)
	store.now = func() time.Time { return now }

	store.Save(&sessionEntry{id: "a"})
	store.Save(&sessionEntry{id: "b"})

	now = now.Add(50 * time.Minute)
	_, ok := store.Get("a")
	require.True(t, ok)

	now = now.Add(20 * time.Minute)
	_, ok = store.Get("a")
	assert.True(t, ok, "a was refreshed 20 minutes ago")
	_, ok = store.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Sweep())
	assert.Zero(t, store.Len())
}

func TestSessionStoreEnsure(t *testing.T) {
	store := newSessionStore(time.Hour, nil)
	calls := 0
	create := func() *sessionEntry {
		calls++
		return &sessionEntry{id: "x"}
	}

	first := store.Ensure("x", create)
	second := store.Ensure("x", create)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	assert.True(t, store.Delete("x"))
	assert.False(t, store.Delete("x"))
	third := store.Ensure("x", create)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, calls)
}

func TestSessionStoreSweepLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	now := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Hour, zap.New(core))
	store.now = func() time.Time { return now }
	store.Save(&sessionEntry{id: "a"})
	store.Save(&sessionEntry{id: "b"})

	assert.Zero(t, store.Sweep())
	assert.Zero(t, logs.Len())

	now = now.Add(2 * time.Hour)
	require.Equal(t, 2, store.Sweep())

	assert.Equal(t, 2, logs.FilterMessage("session expired").Len())
	summary := logs.FilterMessage("session sweep").All()
	require.Len(t, summary, 1)
	assert.Equal(t, int64(2), summary[0].ContextMap()["removed"])
	assert.Equal(t, int64(0), summary[0].ContextMap()["live"])
}
