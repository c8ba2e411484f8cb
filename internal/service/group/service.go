// Package group 小组管理（管理员）与小组帖子（已入群成员）
package group

import (
	"context"
	"strings"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"
	"church_app_server/pkg/util/htmlsanitize"
	"church_app_server/pkg/util/random"

	"go.uber.org/zap"
)

// MembershipChecker 由入群流程提供：进入小组前的状态校验与带人数的小组列表
type MembershipChecker interface {
	CheckApproved(ctx context.Context, sess session.Session, groupId string) error
	ListGroups(ctx context.Context, sess session.Session) []respond.GroupView
}

// PostBroadcaster 新帖子推送
type PostBroadcaster interface {
	Broadcast(ctx context.Context, post respond.GroupPostView)
}

// PostViewFunc 帖子行转为返回结构
type PostViewFunc func(repository.PostWithAuthor) respond.GroupPostView

// groupService 小组业务实现
type groupService struct {
	repos    *repository.Repositories
	members  MembershipChecker
	feed     PostBroadcaster
	postView PostViewFunc
}

// NewGroupService 构造函数，注入所有依赖
func NewGroupService(repos *repository.Repositories, members MembershipChecker, feed PostBroadcaster, postView PostViewFunc) *groupService {
	return &groupService{
		repos:    repos,
		members:  members,
		feed:     feed,
		postView: postView,
	}
}

func toView(g *model.CommunityGroup) *respond.GroupView {
	return &respond.GroupView{
		GroupId:      g.Uuid,
		Name:         g.Name,
		Description:  g.Description,
		Avatar:       g.Avatar,
		MembersCount: g.MemberCount,
		Status:       model.MembershipNone,
	}
}

func findGroup(repos *repository.Repositories, groupId string) (*model.CommunityGroup, error) {
	group, err := repos.Group.FindByUuid(groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "小组不存在")
		}
		zap.L().Error("find group", zap.String("group_id", groupId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return group, nil
}

// CreateGroup 创建小组
func (g *groupService) CreateGroup(actor session.Session, req request.CreateGroupRequest) (*respond.GroupView, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	group := model.CommunityGroup{
		Uuid:        random.NewUuid("G"),
		Name:        strings.TrimSpace(req.Name),
		Description: htmlsanitize.Plain(req.Description),
		Avatar:      req.Avatar,
		MemberCount: req.MemberCount,
		CreatedBy:   actor.UserID,
	}
	if group.Name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "小组名称不能为空")
	}
	if err := g.repos.Group.Create(&group); err != nil {
		zap.L().Error("create group", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return toView(&group), nil
}

// UpdateGroup 更新小组资料
func (g *groupService) UpdateGroup(actor session.Session, req request.UpdateGroupRequest) (*respond.GroupView, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	group, err := findGroup(g.repos, req.GroupId)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		group.Name = name
	}
	group.Description = htmlsanitize.Plain(req.Description)
	group.Avatar = req.Avatar
	group.MemberCount = req.MemberCount
	if err := g.repos.Group.Update(group); err != nil {
		zap.L().Error("update group", zap.String("group_id", group.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return toView(group), nil
}

// DeleteGroup 删除小组，同时删除其入群记录与帖子
func (g *groupService) DeleteGroup(actor session.Session, groupId string) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	err := g.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Membership.DeleteByGroup(groupId); err != nil {
			return err
		}
		if err := tx.GroupPost.DeleteByGroup(groupId); err != nil {
			return err
		}
		return tx.Group.SoftDeleteByUuid(groupId)
	})
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "小组不存在")
		}
		zap.L().Error("delete group", zap.String("group_id", groupId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// ListGroupsAdmin 管理后台小组列表，人数为实时人数
func (g *groupService) ListGroupsAdmin(ctx context.Context, actor session.Session) ([]respond.GroupView, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	return g.members.ListGroups(ctx, actor), nil
}

// ListPosts 小组最近的帖子，仅已入群成员可见
func (g *groupService) ListPosts(ctx context.Context, sess session.Session, groupId string) ([]respond.GroupPostView, error) {
	if err := g.members.CheckApproved(ctx, sess, groupId); err != nil {
		return nil, err
	}
	rows, err := g.repos.GroupPost.FindRecentByGroup(groupId, constants.RECENT_POST_LIMIT)
	if err != nil {
		zap.L().Error("list group posts", zap.String("group_id", groupId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	posts := make([]respond.GroupPostView, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, g.postView(row))
	}
	return posts, nil
}

// CreatePost 发帖并推送给在线成员
func (g *groupService) CreatePost(ctx context.Context, sess session.Session, req request.CreatePostRequest) (*respond.GroupPostView, error) {
	if err := g.members.CheckApproved(ctx, sess, req.GroupId); err != nil {
		return nil, err
	}
	content := htmlsanitize.Plain(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "内容不能为空")
	}
	post := model.GroupPost{
		GroupId: req.GroupId,
		UserId:  sess.UserID,
		Content: content,
	}
	if err := g.repos.GroupPost.Create(&post); err != nil {
		zap.L().Error("create group post", zap.String("group_id", req.GroupId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	row := repository.PostWithAuthor{
		ID:        post.ID,
		GroupId:   post.GroupId,
		UserId:    post.UserId,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}
	if sess.Profile != nil {
		row.DisplayName = sess.Profile.DisplayName
		row.Avatar = sess.Profile.Avatar
	}
	view := g.postView(row)
	g.feed.Broadcast(ctx, view)
	return &view, nil
}
