// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"
	"mime/multipart"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/session"

	"github.com/gin-gonic/gin"
)

// AuthService 注册、登录与令牌管理
type AuthService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error)
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	// Refresh 用 Refresh Token 换新的 Access Token
	Refresh(ctx context.Context, refreshToken string) (*respond.RefreshRespond, error)
	Logout(ctx context.Context, userID string) error
}

// ProfileService 个人资料与成员目录
type ProfileService interface {
	GetMe(sess session.Session) (*respond.ProfileRespond, error)
	UpdateProfile(sess session.Session, req request.UpdateProfileRequest) (*respond.ProfileRespond, error)
	UploadAvatar(sess session.Session, fh *multipart.FileHeader) (*respond.UploadRespond, error)
	ListMembers(req request.MemberListRequest) (*respond.PageWrapper[respond.ProfileRespond], error)
	SetRole(actor session.Session, req request.SetRoleRequest) error
	SetStatus(actor session.Session, req request.SetStatusRequest) error
}

// MembershipService 入群流程
type MembershipService interface {
	// ListGroups 不返回错误，读取失败时降级
	ListGroups(ctx context.Context, sess session.Session) []respond.GroupView
	// RequestJoin 申请加入，返回刷新后的小组列表
	RequestJoin(ctx context.Context, sess session.Session, groupId string) ([]respond.GroupView, error)
	Approve(ctx context.Context, actor session.Session, id uint) error
	Decline(ctx context.Context, actor session.Session, id uint) error
	Remove(ctx context.Context, actor session.Session, id uint) error
	// CheckApproved 未通过时返回 PendingApproval
	CheckApproved(ctx context.Context, sess session.Session, groupId string) error
	EnterGroup(ctx context.Context, sess session.Session, groupId string) (*respond.EnterGroupRespond, error)
	ListRequests(ctx context.Context, actor session.Session, filter repository.MembershipFilter) ([]respond.MembershipRequestView, error)
}

// GroupService 小组管理与帖子
type GroupService interface {
	CreateGroup(actor session.Session, req request.CreateGroupRequest) (*respond.GroupView, error)
	UpdateGroup(actor session.Session, req request.UpdateGroupRequest) (*respond.GroupView, error)
	DeleteGroup(actor session.Session, groupId string) error
	ListGroupsAdmin(ctx context.Context, actor session.Session) ([]respond.GroupView, error)
	ListPosts(ctx context.Context, sess session.Session, groupId string) ([]respond.GroupPostView, error)
	CreatePost(ctx context.Context, sess session.Session, req request.CreatePostRequest) (*respond.GroupPostView, error)
}

// FeedService 小组帖子实时推送
type FeedService interface {
	Broadcast(ctx context.Context, post respond.GroupPostView)
	Connect(c *gin.Context, userId, groupId string)
	Kick(userId, groupId string)
	Run(ctx context.Context)
	Close()
}

// BlogService 博客
type BlogService interface {
	ListCategories() ([]respond.CategoryRespond, error)
	SaveCategory(actor session.Session, req request.CategoryRequest) (*respond.CategoryRespond, error)
	DeleteCategory(actor session.Session, id uint) error
	ListPosts(sess session.Session, req request.BlogListRequest) (*respond.PageWrapper[respond.BlogPostRespond], error)
	GetPost(sess session.Session, id uint) (*respond.BlogPostRespond, error)
	SavePost(actor session.Session, req request.BlogPostRequest) (*respond.BlogPostRespond, error)
	DeletePost(actor session.Session, id uint) error
}

// SermonService 讲道
type SermonService interface {
	List(req request.PageRequest) (*respond.PageWrapper[respond.SermonRespond], error)
	Save(actor session.Session, req request.SermonRequest) (*respond.SermonRespond, error)
	Delete(actor session.Session, id uint) error
}

// MusicService 音乐与播客
type MusicService interface {
	List(req request.MusicListRequest) (*respond.PageWrapper[respond.MusicRespond], error)
	Save(actor session.Session, req request.MusicRequest) (*respond.MusicRespond, error)
	Delete(actor session.Session, id uint) error
}

// EventService 活动与报名
type EventService interface {
	List(sess session.Session, req request.EventListRequest) (*respond.PageWrapper[respond.EventRespond], error)
	ToggleRsvp(sess session.Session, eventId uint) (*respond.RsvpRespond, error)
	Save(actor session.Session, req request.EventRequest) (*respond.EventRespond, error)
	Delete(actor session.Session, id uint) error
}

// HomeService 首页
type HomeService interface {
	Feed(ctx context.Context) *respond.HomeRespond
}

// DevotionService 灵修助手
type DevotionService interface {
	Reflect(ctx context.Context, sess session.Session, req request.ReflectRequest) (*respond.ReflectRespond, error)
}

// MediaService 管理后台媒体上传
type MediaService interface {
	Upload(actor session.Session, fh *multipart.FileHeader) (*respond.UploadRespond, error)
}
