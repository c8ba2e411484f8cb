package membership

import (
	"context"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/model"
)

// Gateway 远端存储上与入群流程相关的操作
// 表未创建时返回 errorx.KindCollectionUnavailable 类错误
type Gateway interface {
	ListGroups() ([]model.CommunityGroup, error)
	FindGroup(groupId string) (*model.CommunityGroup, error)
	UpsertPending(groupId, userId string) error
	FindByUser(userId string) ([]model.GroupMembership, error)
	FindApproved() ([]model.GroupMembership, error)
	FindByID(id uint) (*model.GroupMembership, error)
	FindByGroupAndUser(groupId, userId string) (*model.GroupMembership, error)
	UpdateStatus(id uint, status model.MembershipStatus) error
	DeleteByID(id uint) error
	ListWithApplicant(filter repository.MembershipFilter) ([]repository.MembershipWithApplicant, error)
	RecentPosts(groupId string, limit int) ([]repository.PostWithAuthor, error)
}

// FallbackStore 按用户保存的备用入群记录
type FallbackStore interface {
	Load(ctx context.Context, userId string) ([]myredis.FallbackEntry, error)
	AppendIfAbsent(ctx context.Context, entry myredis.FallbackEntry) (bool, error)
	RemoveGroups(ctx context.Context, userId string, groupIds []string) error
}

// Kicker 断开用户在某小组的实时推送连接
type Kicker interface {
	Kick(userId, groupId string)
}

type noopKicker struct{}

func (noopKicker) Kick(string, string) {}

// repoGateway 基于 Repository 的 Gateway 实现
type repoGateway struct {
	repos *repository.Repositories
}

// NewRepositoryGateway 用 MySQL Repository 实现 Gateway
func NewRepositoryGateway(repos *repository.Repositories) Gateway {
	return &repoGateway{repos: repos}
}

func (g *repoGateway) ListGroups() ([]model.CommunityGroup, error) {
	return g.repos.Group.FindAll()
}

func (g *repoGateway) FindGroup(groupId string) (*model.CommunityGroup, error) {
	return g.repos.Group.FindByUuid(groupId)
}

func (g *repoGateway) UpsertPending(groupId, userId string) error {
	return g.repos.Membership.UpsertPending(groupId, userId)
}

func (g *repoGateway) FindByUser(userId string) ([]model.GroupMembership, error) {
	return g.repos.Membership.FindByUser(userId)
}

func (g *repoGateway) FindApproved() ([]model.GroupMembership, error) {
	return g.repos.Membership.FindApproved()
}

func (g *repoGateway) FindByID(id uint) (*model.GroupMembership, error) {
	return g.repos.Membership.FindByID(id)
}

func (g *repoGateway) FindByGroupAndUser(groupId, userId string) (*model.GroupMembership, error) {
	return g.repos.Membership.FindByGroupAndUser(groupId, userId)
}

func (g *repoGateway) UpdateStatus(id uint, status model.MembershipStatus) error {
	return g.repos.Membership.UpdateStatus(id, status)
}

func (g *repoGateway) DeleteByID(id uint) error {
	return g.repos.Membership.DeleteByID(id)
}

func (g *repoGateway) ListWithApplicant(filter repository.MembershipFilter) ([]repository.MembershipWithApplicant, error) {
	return g.repos.Membership.ListWithApplicant(filter)
}

func (g *repoGateway) RecentPosts(groupId string, limit int) ([]repository.PostWithAuthor, error) {
	return g.repos.GroupPost.FindRecentByGroup(groupId, limit)
}
