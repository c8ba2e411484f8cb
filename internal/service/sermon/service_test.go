package sermon

import (
	"testing"
	"time"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSermons struct {
	repository.SermonRepository
	rows map[uint]*model.Sermon
}

func (s *stubSermons) FindByID(id uint) (*model.Sermon, error) {
	if v, ok := s.rows[id]; ok {
		return v, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "not found")
}

func (s *stubSermons) Create(v *model.Sermon) error {
	v.ID = uint(len(s.rows) + 1)
	s.rows[v.ID] = v
	return nil
}

func (s *stubSermons) Delete(id uint) error {
	if _, ok := s.rows[id]; !ok {
		return errorx.New(errorx.CodeNotFound, "not found")
	}
	delete(s.rows, id)
	return nil
}

func newTestService(t *testing.T) (*sermonService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := myredis.NewRedisCache(client, 1, 4)
	t.Cleanup(cache.Close)
	repos := &repository.Repositories{Sermon: &stubSermons{rows: map[uint]*model.Sermon{}}}
	return NewSermonService(repos, cache), mr
}

func TestSaveSermonInvalidatesHomeFeed(t *testing.T) {
	svc, mr := newTestService(t)
	require.NoError(t, mr.Set(constants.REDIS_HOME_FEED_KEY, "{}"))

	rsp, err := svc.Save(session.Admin("A1"), request.SermonRequest{
		Title:      "登山宝训",
		Preacher:   "王牧师",
		Scripture:  "马太福音 5:1-12",
		PreachedAt: "2024-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", rsp.PreachedAt)

	assert.Eventually(t, func() bool {
		return !mr.Exists(constants.REDIS_HOME_FEED_KEY)
	}, time.Second, 10*time.Millisecond)
}

func TestSaveSermonRejectsBadDate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Save(session.Admin("A1"), request.SermonRequest{Title: "x", PreachedAt: "10/03/2024"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestSermonAdminOnly(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Save(session.Member("U1"), request.SermonRequest{Title: "x", PreachedAt: "2024-03-10"})
	assert.ErrorIs(t, err, errorx.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(session.Guest(), 1), errorx.ErrForbidden)
}

func TestDeleteMissingSermon(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(session.Admin("A1"), 42)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}
