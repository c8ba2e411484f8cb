// Package home 首页聚合：最新文章、近期活动、最新讲道与音频
package home

import (
	"context"
	"encoding/json"
	"time"

	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const cacheTTL = 5 * time.Minute

// 各栏目的数据来源
type (
	BlogLister interface {
		ListPosts(sess session.Session, req request.BlogListRequest) (*respond.PageWrapper[respond.BlogPostRespond], error)
	}
	EventLister interface {
		List(sess session.Session, req request.EventListRequest) (*respond.PageWrapper[respond.EventRespond], error)
	}
	SermonLister interface {
		List(req request.PageRequest) (*respond.PageWrapper[respond.SermonRespond], error)
	}
	MusicLister interface {
		List(req request.MusicListRequest) (*respond.PageWrapper[respond.MusicRespond], error)
	}
)

type homeService struct {
	blog    BlogLister
	events  EventLister
	sermons SermonLister
	music   MusicLister
	cache   myredis.AsyncCacheService
}

// NewHomeService 构造函数
func NewHomeService(blog BlogLister, events EventLister, sermons SermonLister, music MusicLister, cache myredis.AsyncCacheService) *homeService {
	return &homeService{blog: blog, events: events, sermons: sermons, music: music, cache: cache}
}

// Feed 首页数据，内容与访问者无关，按访客视角构建并缓存
// 某个栏目读取失败时该栏目为空，且本次结果不写缓存
func (s *homeService) Feed(ctx context.Context) *respond.HomeRespond {
	if cached, err := s.cache.Get(ctx, constants.REDIS_HOME_FEED_KEY); err != nil {
		zap.L().Warn("read home feed cache", zap.Error(err))
	} else if cached != "" {
		var rsp respond.HomeRespond
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return &rsp
		}
		zap.L().Warn("corrupt home feed cache")
	}

	page := request.PageRequest{Page: 1, PageSize: constants.HOME_SECTION_LIMIT}
	guest := session.Guest()
	rsp := &respond.HomeRespond{
		Posts:   []respond.BlogPostRespond{},
		Events:  []respond.EventRespond{},
		Sermons: []respond.SermonRespond{},
		Tracks:  []respond.MusicRespond{},
	}

	p := pool.New().WithErrors()
	p.Go(func() error {
		r, err := s.blog.ListPosts(guest, request.BlogListRequest{PageRequest: page})
		if err == nil {
			rsp.Posts = r.List
		}
		return err
	})
	p.Go(func() error {
		r, err := s.events.List(guest, request.EventListRequest{PageRequest: page})
		if err == nil {
			rsp.Events = r.List
		}
		return err
	})
	p.Go(func() error {
		r, err := s.sermons.List(page)
		if err == nil {
			rsp.Sermons = r.List
		}
		return err
	})
	p.Go(func() error {
		r, err := s.music.List(request.MusicListRequest{PageRequest: page})
		if err == nil {
			rsp.Tracks = r.List
		}
		return err
	})
	if err := p.Wait(); err != nil {
		zap.L().Error("build home feed", zap.Error(err))
		return rsp
	}

	payload, err := json.Marshal(rsp)
	if err != nil {
		return rsp
	}
	s.cache.SubmitTask(func() {
		if err := s.cache.Set(context.Background(), constants.REDIS_HOME_FEED_KEY, string(payload), cacheTTL); err != nil {
			zap.L().Error("write home feed cache", zap.Error(err))
		}
	})
	return rsp
}
