// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/infrastructure/mq"
	"church_app_server/internal/service/auth"
	"church_app_server/internal/service/blog"
	"church_app_server/internal/service/devotion"
	"church_app_server/internal/service/event"
	"church_app_server/internal/service/feed"
	"church_app_server/internal/service/group"
	"church_app_server/internal/service/home"
	"church_app_server/internal/service/media"
	"church_app_server/internal/service/membership"
	"church_app_server/internal/service/music"
	"church_app_server/internal/service/profile"
	"church_app_server/internal/service/sermon"
)

// Deps 构建 Services 所需的基础设施
type Deps struct {
	Repos        *repository.Repositories
	Cache        myredis.AsyncCacheService
	Fallback     membership.FallbackStore
	Publisher    mq.EventPublisher
	FeedHub      *feed.Hub
	FeedBroker   feed.Broker
	Avatars      *media.Store
	Media        *media.Store
	Generator    devotion.Generator // 为 nil 时灵修助手关闭
	RefreshHours int
}

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过它访问各个 Service
type Services struct {
	Auth       AuthService
	Profile    ProfileService
	Membership MembershipService
	Group      GroupService
	Feed       FeedService
	Blog       BlogService
	Sermon     SermonService
	Music      MusicService
	Event      EventService
	Home       HomeService
	Devotion   DevotionService
	Media      MediaService
}

// NewServices 创建并注入所有 Service 实例
func NewServices(d Deps) *Services {
	feedSvc := feed.NewFeedService(d.FeedHub, d.FeedBroker)
	membershipSvc := membership.NewMembershipService(membership.NewRepositoryGateway(d.Repos), d.Fallback, d.Publisher, feedSvc)
	blogSvc := blog.NewBlogService(d.Repos, d.Cache)
	sermonSvc := sermon.NewSermonService(d.Repos, d.Cache)
	musicSvc := music.NewMusicService(d.Repos, d.Cache)
	eventSvc := event.NewEventService(d.Repos, d.Cache)

	return &Services{
		Auth:       auth.NewAuthService(d.Repos, d.Cache, d.RefreshHours),
		Profile:    profile.NewProfileService(d.Repos, d.Avatars),
		Membership: membershipSvc,
		Group:      group.NewGroupService(d.Repos, membershipSvc, feedSvc, membership.PostView),
		Feed:       feedSvc,
		Blog:       blogSvc,
		Sermon:     sermonSvc,
		Music:      musicSvc,
		Event:      eventSvc,
		Home:       home.NewHomeService(blogSvc, eventSvc, sermonSvc, musicSvc, d.Cache),
		Devotion:   devotion.NewDevotionService(d.Generator, d.Cache),
		Media:      media.NewMediaService(d.Media),
	}
}
