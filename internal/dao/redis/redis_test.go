package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"church_app_server/internal/model"
	"church_app_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestFallbackStoreAppendIsIdempotent(t *testing.T) {
	_, client := newTestClient(t)
	store := NewMembershipFallbackStore(client)
	ctx := context.Background()

	entry := FallbackEntry{GroupId: "G2", UserId: "UB", Status: model.MembershipPending}

	ok, err := store.AppendIfAbsent(ctx, entry)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AppendIfAbsent(ctx, entry)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := store.Load(ctx, "UB")
	require.NoError(t, err)
	assert.Equal(t, []FallbackEntry{entry}, entries)
}

func TestFallbackStoreIsScopedPerUser(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewMembershipFallbackStore(client)
	ctx := context.Background()

	_, err := store.AppendIfAbsent(ctx, FallbackEntry{GroupId: "G1", UserId: "UA", Status: model.MembershipPending})
	require.NoError(t, err)

	entries, err := store.Load(ctx, "UB")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.True(t, mr.Exists("membership_fallback:UA"))
}

func TestFallbackStoreConcurrentAppends(t *testing.T) {
	_, client := newTestClient(t)
	store := NewMembershipFallbackStore(client)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, g := range []string{"G1", "G2", "G3", "G1", "G2"} {
		wg.Add(1)
		go func(groupId string) {
			defer wg.Done()
			_, _ = store.AppendIfAbsent(ctx, FallbackEntry{GroupId: groupId, UserId: "UC", Status: model.MembershipPending})
		}(g)
	}
	wg.Wait()

	entries, err := store.Load(ctx, "UC")
	require.NoError(t, err)
	seen := map[string]int{}
	for _, e := range entries {
		seen[e.GroupId]++
	}
	for g, n := range seen {
		assert.Equalf(t, 1, n, "group %s stored %d times", g, n)
	}
}

func TestFallbackStoreRemoveGroups(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewMembershipFallbackStore(client)
	ctx := context.Background()

	for _, g := range []string{"G1", "G2", "G3"} {
		_, err := store.AppendIfAbsent(ctx, FallbackEntry{GroupId: g, UserId: "UD", Status: model.MembershipPending})
		require.NoError(t, err)
	}

	require.NoError(t, store.RemoveGroups(ctx, "UD", []string{"G1", "G3", "G9"}))
	entries, err := store.Load(ctx, "UD")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "G2", entries[0].GroupId)

	require.NoError(t, store.RemoveGroups(ctx, "UD", []string{"G2"}))
	assert.False(t, mr.Exists("membership_fallback:UD"))

	// 键不存在时什么也不做
	require.NoError(t, store.RemoveGroups(ctx, "UD", []string{"G2"}))
}

func TestFallbackStoreCorruptBlob(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewMembershipFallbackStore(client)
	require.NoError(t, mr.Set("membership_fallback:UE", "not-json"))

	_, err := store.Load(context.Background(), "UE")
	assert.Equal(t, errorx.CodeCacheError, errorx.GetCode(err))
}

func TestRedisCacheGetSetDelete(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRedisCache(client, 1, 4)
	defer cache.Close()
	ctx := context.Background()

	v, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, cache.Set(ctx, "home_feed", "{}", time.Minute))
	v, err = cache.Get(ctx, "home_feed")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	require.NoError(t, cache.Delete(ctx, "home_feed"))
	assert.False(t, mr.Exists("home_feed"))
}

func TestRedisCacheSubmitTaskRuns(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewRedisCache(client, 2, 1)
	defer cache.Close()

	done := make(chan struct{})
	cache.SubmitTask(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task not executed")
	}
}
