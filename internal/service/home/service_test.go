package home

import (
	"context"
	"errors"
	"testing"
	"time"

	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSources struct {
	calls     int
}

func (f *fakeSources) ListPosts(session.Session, request.BlogListRequest) (*respond.PageWrapper[respond.BlogPostRespond], error) {
	f.calls++
	return &respond.PageWrapper[respond.BlogPostRespond]{List: []respond.BlogPostRespond{{Id: 1, Title: "欢迎"}}}, nil
}

type fakeEvents struct{ err error }

func (f fakeEvents) List(sess session.Session, req request.EventListRequest) (*respond.PageWrapper[respond.EventRespond], error) {
	if f.err != nil {
		return nil, f.err
	}
	return &respond.PageWrapper[respond.EventRespond]{List: []respond.EventRespond{{Id: 2}}}, nil
}

type fakeSermons struct{}

func (fakeSermons) List(request.PageRequest) (*respond.PageWrapper[respond.SermonRespond], error) {
	return &respond.PageWrapper[respond.SermonRespond]{List: []respond.SermonRespond{{Id: 3}}}, nil
}

type fakeMusic struct{}

func (fakeMusic) List(req request.MusicListRequest) (*respond.PageWrapper[respond.MusicRespond], error) {
	return &respond.PageWrapper[respond.MusicRespond]{List: []respond.MusicRespond{{Id: 4}}}, nil
}

func newCache(t *testing.T) (*myredis.RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	cache := myredis.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 1, 4)
	t.Cleanup(cache.Close)
	return cache, mr
}

func TestFeedIsCachedAfterFirstBuild(t *testing.T) {
	cache, mr := newCache(t)
	blog := &fakeSources{}
	svc := NewHomeService(blog, fakeEvents{}, fakeSermons{}, fakeMusic{}, cache)

	first := svc.Feed(context.Background())
	require.Len(t, first.Posts, 1)
	assert.Equal(t, uint(2), first.Events[0].Id)

	require.Eventually(t, func() bool { return mr.Exists(constants.REDIS_HOME_FEED_KEY) }, time.Second, 10*time.Millisecond)

	second := svc.Feed(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, blog.calls)
}

func TestFailedSectionIsEmptyAndNotCached(t *testing.T) {
	cache, mr := newCache(t)
	svc := NewHomeService(&fakeSources{}, fakeEvents{err: errors.New("db down")}, fakeSermons{}, fakeMusic{}, cache)

	rsp := svc.Feed(context.Background())
	assert.Empty(t, rsp.Events)
	assert.NotNil(t, rsp.Events)
	assert.Len(t, rsp.Tracks, 1)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, mr.Exists(constants.REDIS_HOME_FEED_KEY))
}
