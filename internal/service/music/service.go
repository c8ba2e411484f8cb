// Package music 诗歌与播客音频
package music

import (
	"context"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"
	"church_app_server/pkg/util/htmlsanitize"

	"go.uber.org/zap"
)

type musicService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewMusicService 构造函数
func NewMusicService(repos *repository.Repositories, cache myredis.AsyncCacheService) *musicService {
	return &musicService{repos: repos, cache: cache}
}

func ToRespond(t *model.MusicTrack) respond.MusicRespond {
	return respond.MusicRespond{
		Id:              t.ID,
		Title:           t.Title,
		Artist:          t.Artist,
		Album:           t.Album,
		Kind:            t.Kind,
		MediaUrl:        t.MediaUrl,
		CoverUrl:        t.CoverUrl,
		DurationSeconds: t.DurationSeconds,
	}
}

// List kind 为空时返回全部
func (s *musicService) List(req request.MusicListRequest) (*respond.PageWrapper[respond.MusicRespond], error) {
	req.Normalize()
	rows, total, err := s.repos.Music.List(req.Kind, req.Page, req.PageSize)
	if err != nil {
		zap.L().Error("list tracks", zap.String("kind", req.Kind), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.MusicRespond, 0, len(rows))
	for i := range rows {
		list = append(list, ToRespond(&rows[i]))
	}
	return &respond.PageWrapper[respond.MusicRespond]{List: list, Total: total}, nil
}

// Save Id 为 0 时创建，否则更新
func (s *musicService) Save(actor session.Session, req request.MusicRequest) (*respond.MusicRespond, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	if req.Kind != model.TrackKindMusic && req.Kind != model.TrackKindPodcast {
		return nil, errorx.New(errorx.CodeInvalidParam, "类型只能是 music 或 podcast")
	}

	track := &model.MusicTrack{}
	var err error
	if req.Id != 0 {
		if track, err = s.repos.Music.FindByID(req.Id); err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.New(errorx.CodeNotFound, "音频不存在")
			}
			zap.L().Error("find track", zap.Uint("id", req.Id), zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
	}
	track.Title = htmlsanitize.Plain(req.Title)
	track.Artist = htmlsanitize.Plain(req.Artist)
	track.Album = htmlsanitize.Plain(req.Album)
	track.Kind = req.Kind
	track.MediaUrl = req.MediaUrl
	track.CoverUrl = req.CoverUrl
	track.DurationSeconds = req.DurationSeconds

	if track.ID == 0 {
		err = s.repos.Music.Create(track)
	} else {
		err = s.repos.Music.Update(track)
	}
	if err != nil {
		zap.L().Error("save track", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), constants.REDIS_HOME_FEED_KEY); err != nil {
			zap.L().Error("invalidate home feed", zap.Error(err))
		}
	})
	rsp := ToRespond(track)
	return &rsp, nil
}

// Delete 删除音频
func (s *musicService) Delete(actor session.Session, id uint) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	if err := s.repos.Music.Delete(id); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "音频不存在")
		}
		zap.L().Error("delete track", zap.Uint("id", id), zap.Error(err))
		return errorx.ErrServerBusy
	}
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), constants.REDIS_HOME_FEED_KEY); err != nil {
			zap.L().Error("invalidate home feed", zap.Error(err))
		}
	})
	return nil
}
