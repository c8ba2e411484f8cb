// Package sermon 讲道资料的维护与列表
package sermon

import (
	"context"
	"time"

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

const dateLayout = "2006-01-02"

type sermonService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewSermonService 构造函数
func NewSermonService(repos *repository.Repositories, cache myredis.AsyncCacheService) *sermonService {
	return &sermonService{repos: repos, cache: cache}
}

// ToRespond 首页也复用
func ToRespond(s *model.Sermon) respond.SermonRespond {
	return respond.SermonRespond{
		Id:          s.ID,
		Title:       s.Title,
		Preacher:    s.Preacher,
		Scripture:   s.Scripture,
		Description: s.Description,
		MediaUrl:    s.MediaUrl,
		CoverUrl:    s.CoverUrl,
		PreachedAt:  s.PreachedAt.Format(dateLayout),
	}
}

// List 按讲道日期倒序
func (s *sermonService) List(req request.PageRequest) (*respond.PageWrapper[respond.SermonRespond], error) {
	req.Normalize()
	rows, total, err := s.repos.Sermon.List(req.Page, req.PageSize)
	if err != nil {
		zap.L().Error("list sermons", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.SermonRespond, 0, len(rows))
	for i := range rows {
		list = append(list, ToRespond(&rows[i]))
	}
	return &respond.PageWrapper[respond.SermonRespond]{List: list, Total: total}, nil
}

// Save Id 为 0 时创建，否则更新
func (s *sermonService) Save(actor session.Session, req request.SermonRequest) (*respond.SermonRespond, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	preachedAt, err := time.ParseInLocation(dateLayout, req.PreachedAt, time.Local)
	if err != nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "讲道日期格式应为 2006-01-02")
	}

	sermon := &model.Sermon{}
	if req.Id != 0 {
		if sermon, err = s.repos.Sermon.FindByID(req.Id); err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.New(errorx.CodeNotFound, "讲道不存在")
			}
			zap.L().Error("find sermon", zap.Uint("id", req.Id), zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
	}
	sermon.Title = htmlsanitize.Plain(req.Title)
	sermon.Preacher = htmlsanitize.Plain(req.Preacher)
	sermon.Scripture = htmlsanitize.Plain(req.Scripture)
	sermon.Description = htmlsanitize.Plain(req.Description)
	sermon.MediaUrl = req.MediaUrl
	sermon.CoverUrl = req.CoverUrl
	sermon.PreachedAt = preachedAt

	if sermon.ID == 0 {
		err = s.repos.Sermon.Create(sermon)
	} else {
		err = s.repos.Sermon.Update(sermon)
	}
	if err != nil {
		zap.L().Error("save sermon", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	s.invalidateHome()
	rsp := ToRespond(sermon)
	return &rsp, nil
}

// Delete 删除讲道
func (s *sermonService) Delete(actor session.Session, id uint) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	if err := s.repos.Sermon.Delete(id); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "讲道不存在")
		}
		zap.L().Error("delete sermon", zap.Uint("id", id), zap.Error(err))
		return errorx.ErrServerBusy
	}
	s.invalidateHome()
	return nil
}

func (s *sermonService) invalidateHome() {
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), constants.REDIS_HOME_FEED_KEY); err != nil {
			zap.L().Error("invalidate home feed", zap.Error(err))
		}
	})
}
