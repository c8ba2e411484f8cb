package music

import (
	"context"
	"testing"
	"time"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTracks struct {
	repository.MusicRepository
	rows     []model.MusicTrack
	lastKind string
}

func (s *stubTracks) Create(t *model.MusicTrack) error {
	t.ID = uint(len(s.rows) + 1)
	s.rows = append(s.rows, *t)
	return nil
}

func (s *stubTracks) List(kind string, page, size int) ([]model.MusicTrack, int64, error) {
	s.lastKind = kind
	var out []model.MusicTrack
	for _, t := range s.rows {
		if kind == "" || t.Kind == kind {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

type nopCache struct{}

func (nopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (nopCache) Get(context.Context, string) (string, error)               { return "", nil }
func (nopCache) Delete(context.Context, string) error                      { return nil }
func (nopCache) SubmitTask(action func())                                  { action() }

func TestSaveAndFilterByKind(t *testing.T) {
	tracks := &stubTracks{}
	svc := NewMusicService(&repository.Repositories{Music: tracks}, nopCache{})
	admin := session.Admin("A1")

	_, err := svc.Save(admin, request.MusicRequest{Title: "奇异恩典", Kind: model.TrackKindMusic})
	require.NoError(t, err)
	_, err = svc.Save(admin, request.MusicRequest{Title: "主日回顾", Kind: model.TrackKindPodcast, DurationSeconds: 1800})
	require.NoError(t, err)

	page, err := svc.List(request.MusicListRequest{Kind: model.TrackKindPodcast})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "主日回顾", page.List[0].Title)
	assert.Equal(t, 1800, page.List[0].DurationSeconds)
}

func TestSaveRejectsUnknownKind(t *testing.T) {
	svc := NewMusicService(&repository.Repositories{Music: &stubTracks{}}, nopCache{})
	_, err := svc.Save(session.Admin("A1"), request.MusicRequest{Title: "x", Kind: "video"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}
