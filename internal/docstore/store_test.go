package docstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		require.True(t, ok, "stream closed unexpectedly: %v", sub.Err())
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestSplitPath(t *testing.T) {
	parent, key, err := splitPath("/favorites/u1/item-9/")
	require.NoError(t, err)
	assert.Equal(t, "favorites/u1", parent)
	assert.Equal(t, "item-9", key)

	_, _, err = splitPath("favorites")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, _, err = splitPath("a//b")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "catalog/toppings/cheese", 1.5))
	require.NoError(t, m.Set(ctx, "catalog/toppings/bacon", 2))

	snap, err := m.Get(ctx, "catalog/toppings")
	require.NoError(t, err)
	assert.Equal(t, []string{"bacon", "cheese"}, snap.Keys())

	var price float64
	found, err := snap.Decode("cheese", &price)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1.5, price)

	require.NoError(t, m.Delete(ctx, "catalog/toppings/cheese"))
	snap, _ = m.Get(ctx, "catalog/toppings")
	assert.Equal(t, []string{"bacon"}, snap.Keys())
}

func TestMemory_SubscribeDeliversFullSnapshots(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "favorites/u1/a", true))

	sub, err := m.Subscribe(ctx, "favorites/u1")
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, []string{"a"}, receive(t, sub).Keys())

	require.NoError(t, m.Set(ctx, "favorites/u1/b", true))
	assert.Equal(t, []string{"a", "b"}, receive(t, sub).Keys())

	require.NoError(t, m.Delete(ctx, "favorites/u1/a"))
	assert.Equal(t, []string{"b"}, receive(t, sub).Keys())
}

func TestMemory_CloseReleasesListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMemory()

	sub, err := m.Subscribe(ctx, "catalog/items")
	require.NoError(t, err)
	require.Equal(t, 1, m.Subscribers("catalog/items"))

	cancel()
	require.Eventually(t, func() bool {
		return m.Subscribers("catalog/items") == 0
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, sub.Err())
}

func TestMemory_FailTerminatesWithCause(t *testing.T) {
	m := NewMemory()
	sub, err := m.Subscribe(context.Background(), "catalog/items")
	require.NoError(t, err)
	receive(t, sub)

	cause := errors.New("permission denied")
	m.Fail("catalog/items", cause)

	_, open := <-sub.C()
	assert.False(t, open)
	assert.ErrorIs(t, sub.Err(), cause)
	assert.Equal(t, 0, m.Subscribers("catalog/items"))
}

func TestRedis_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := ConnectRedis(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedis(client, logrus.New())
	path := "test/" + time.Now().Format("150405.000000")
	defer client.Del(ctx, keyPrefix+path)

	sub, err := store.Subscribe(ctx, path)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, 0, receive(t, sub).Len())

	require.NoError(t, store.Set(ctx, path+"/x", map[string]int{"n": 1}))
	assert.Equal(t, []string{"x"}, receive(t, sub).Keys())
}
