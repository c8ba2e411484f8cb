// Package event 教会活动与报名
package event

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

const timeLayout = "2006-01-02 15:04"

var (
	errEventNotFound = errorx.New(errorx.CodeNotFound, "活动不存在")
	errEventFull     = errorx.New(errorx.CodeConflict, "活动名额已满")
	errEventEnded    = errorx.New(errorx.CodeInvalidParam, "活动已结束")
)

// transactor 报名切换需要在事务里加锁读取活动
type transactor interface {
	Transaction(fn func(tx *repository.Repositories) error) error
}

type eventService struct {
	repos *repository.Repositories
	tx    transactor
	cache myredis.AsyncCacheService
	now   func() time.Time
}

// NewEventService 构造函数
func NewEventService(repos *repository.Repositories, cache myredis.AsyncCacheService) *eventService {
	return &eventService{repos: repos, tx: repos, cache: cache, now: time.Now}
}

func toRespond(e *model.Event, count int64, mine bool) respond.EventRespond {
	return respond.EventRespond{
		Id:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt.Format(timeLayout),
		EndsAt:      e.EndsAt.Format(timeLayout),
		Capacity:    e.Capacity,
		CoverUrl:    e.CoverUrl,
		RsvpCount:   count,
		MyRsvp:      mine,
		IsFull:      e.Capacity > 0 && count >= int64(e.Capacity),
	}
}

// List 活动列表，带报名人数；登录用户同时返回自己是否已报名
// 报名统计失败时人数按 0 返回，不影响列表
func (s *eventService) List(sess session.Session, req request.EventListRequest) (*respond.PageWrapper[respond.EventRespond], error) {
	req.Normalize()
	rows, total, err := s.repos.Event.List(!req.All, s.now(), req.Page, req.PageSize)
	if err != nil {
		zap.L().Error("list events", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	ids := make([]uint, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.ID)
	}
	counts := map[uint]int64{}
	mine := map[uint]bool{}
	if len(ids) > 0 {
		if c, err := s.repos.EventRsvp.CountByEvents(ids); err != nil {
			zap.L().Warn("count rsvps", zap.Error(err))
		} else {
			counts = c
		}
		if !sess.IsGuest() {
			if m, err := s.repos.EventRsvp.FindEventIdsByUser(sess.UserID, ids); err != nil {
				zap.L().Warn("find my rsvps", zap.String("user_id", sess.UserID), zap.Error(err))
			} else {
				mine = m
			}
		}
	}

	list := make([]respond.EventRespond, 0, len(rows))
	for i := range rows {
		list = append(list, toRespond(&rows[i], counts[rows[i].ID], mine[rows[i].ID]))
	}
	return &respond.PageWrapper[respond.EventRespond]{List: list, Total: total}, nil
}

// ToggleRsvp 未报名则报名，已报名则取消
// 报名时在事务内锁住活动行检查人数上限
func (s *eventService) ToggleRsvp(sess session.Session, eventId uint) (*respond.RsvpRespond, error) {
	if sess.IsGuest() {
		return nil, errorx.New(errorx.CodeUnauthorized, "请先登录后再报名")
	}

	rsp := &respond.RsvpRespond{EventId: eventId}
	err := s.tx.Transaction(func(tx *repository.Repositories) error {
		event, err := tx.Event.FindByIDForUpdate(eventId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errEventNotFound
			}
			return err
		}

		exists, err := tx.EventRsvp.Exists(eventId, sess.UserID)
		if err != nil {
			return err
		}
		if exists {
			if _, err := tx.EventRsvp.Delete(eventId, sess.UserID); err != nil {
				return err
			}
		} else {
			if event.EndsAt.Before(s.now()) {
				return errEventEnded
			}
			count, err := tx.EventRsvp.CountByEvent(eventId)
			if err != nil {
				return err
			}
			if event.Capacity > 0 && count >= int64(event.Capacity) {
				return errEventFull
			}
			if err := tx.EventRsvp.Create(&model.EventRsvp{EventId: eventId, UserId: sess.UserID}); err != nil &&
				errorx.KindOf(err) != errorx.KindConflict {
				return err
			}
			rsp.Rsvped = true
		}

		rsp.RsvpCount, err = tx.EventRsvp.CountByEvent(eventId)
		return err
	})
	if err != nil {
		switch err {
		case errEventNotFound, errEventFull, errEventEnded:
			return nil, err
		}
		zap.L().Error("toggle rsvp", zap.Uint("event_id", eventId), zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return rsp, nil
}

// Save Id 为 0 时创建，否则更新；结束时间缺省为开始时间
func (s *eventService) Save(actor session.Session, req request.EventRequest) (*respond.EventRespond, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	startsAt, err := time.ParseInLocation(timeLayout, req.StartsAt, time.Local)
	if err != nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "开始时间格式应为 2006-01-02 15:04")
	}
	endsAt := startsAt
	if req.EndsAt != "" {
		if endsAt, err = time.ParseInLocation(timeLayout, req.EndsAt, time.Local); err != nil {
			return nil, errorx.New(errorx.CodeInvalidParam, "结束时间格式应为 2006-01-02 15:04")
		}
		if endsAt.Before(startsAt) {
			return nil, errorx.New(errorx.CodeInvalidParam, "结束时间不能早于开始时间")
		}
	}

	event := &model.Event{}
	if req.Id != 0 {
		if event, err = s.repos.Event.FindByID(req.Id); err != nil {
			if errorx.IsNotFound(err) {
				return nil, errEventNotFound
			}
			zap.L().Error("find event", zap.Uint("id", req.Id), zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
	}
	event.Title = htmlsanitize.Plain(req.Title)
	event.Description = htmlsanitize.Plain(req.Description)
	event.Location = htmlsanitize.Plain(req.Location)
	event.StartsAt = startsAt
	event.EndsAt = endsAt
	event.Capacity = req.Capacity
	event.CoverUrl = req.CoverUrl

	if event.ID == 0 {
		err = s.repos.Event.Create(event)
	} else {
		err = s.repos.Event.Update(event)
	}
	if err != nil {
		zap.L().Error("save event", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	s.invalidateHome()

	var count int64
	if event.ID != 0 {
		if count, err = s.repos.EventRsvp.CountByEvent(event.ID); err != nil {
			zap.L().Warn("count rsvps", zap.Uint("event_id", event.ID), zap.Error(err))
		}
	}
	rsp := toRespond(event, count, false)
	return &rsp, nil
}

// Delete 删除活动及其报名
func (s *eventService) Delete(actor session.Session, id uint) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	err := s.tx.Transaction(func(tx *repository.Repositories) error {
		if err := tx.EventRsvp.DeleteByEvent(id); err != nil {
			return err
		}
		return tx.Event.Delete(id)
	})
	if err != nil {
		if errorx.IsNotFound(err) {
			return errEventNotFound
		}
		zap.L().Error("delete event", zap.Uint("id", id), zap.Error(err))
		return errorx.ErrServerBusy
	}
	s.invalidateHome()
	return nil
}

func (s *eventService) invalidateHome() {
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), constants.REDIS_HOME_FEED_KEY); err != nil {
			zap.L().Error("invalidate home feed", zap.Error(err))
		}
	})
}
