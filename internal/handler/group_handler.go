// Package handler 提供 HTTP 请求处理器
// 本文件处理社区小组与入群流程相关的 API 请求
package handler

import (
	"context"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/model"
	"church_app_server/internal/service"
	"church_app_server/internal/session"

	"github.com/gin-gonic/gin"
)

// GroupHandler 小组请求处理器
type GroupHandler struct {
	membershipSvc service.MembershipService
	groupSvc      service.GroupService
}

// NewGroupHandler 创建小组处理器实例
func NewGroupHandler(membershipSvc service.MembershipService, groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{membershipSvc: membershipSvc, groupSvc: groupSvc}
}

// ListGroups 小组列表，访客看到的状态均为 none
// GET /groups
// 响应: []respond.GroupView
func (h *GroupHandler) ListGroups(c *gin.Context) {
	HandleSuccess(c, h.membershipSvc.ListGroups(c.Request.Context(), middleware.CurrentSession(c)))
}

// Join 申请加入小组
// POST /groups/join
// 请求体: request.GroupIdRequest
// 响应: 刷新后的 []respond.GroupView
func (h *GroupHandler) Join(c *gin.Context) {
	var req request.GroupIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.membershipSvc.RequestJoin(c.Request.Context(), middleware.CurrentSession(c), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Enter 进入小组，未通过审核时返回 PendingApproval
// POST /groups/enter
func (h *GroupHandler) Enter(c *gin.Context) {
	var req request.GroupIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.membershipSvc.EnterGroup(c.Request.Context(), middleware.CurrentSession(c), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListPosts GET /groups/posts?group_id=
func (h *GroupHandler) ListPosts(c *gin.Context) {
	var req request.GroupIdRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.ListPosts(c.Request.Context(), middleware.CurrentSession(c), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreatePost POST /groups/posts
func (h *GroupHandler) CreatePost(c *gin.Context) {
	var req request.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.CreatePost(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ==================== 管理后台 ====================

// AdminListGroups GET /admin/groups
func (h *GroupHandler) AdminListGroups(c *gin.Context) {
	data, err := h.groupSvc.ListGroupsAdmin(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreateGroup POST /admin/groups/create
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.CreateGroup(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateGroup POST /admin/groups/update
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req request.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.UpdateGroup(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteGroup POST /admin/groups/delete
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	var req request.GroupIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.groupSvc.DeleteGroup(middleware.CurrentSession(c), req.GroupId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListMemberships GET /admin/memberships?group_id=&status=
func (h *GroupHandler) ListMemberships(c *gin.Context) {
	var req request.MembershipListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	filter := repository.MembershipFilter{GroupId: req.GroupId, Status: model.ParseMembershipStatus(req.Status)}
	data, err := h.membershipSvc.ListRequests(c.Request.Context(), middleware.CurrentSession(c), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Approve POST /admin/memberships/approve
func (h *GroupHandler) Approve(c *gin.Context) {
	h.review(c, h.membershipSvc.Approve)
}

// Decline POST /admin/memberships/decline
func (h *GroupHandler) Decline(c *gin.Context) {
	h.review(c, h.membershipSvc.Decline)
}

// Remove POST /admin/memberships/remove
func (h *GroupHandler) Remove(c *gin.Context) {
	h.review(c, h.membershipSvc.Remove)
}

func (h *GroupHandler) review(c *gin.Context, action func(ctx context.Context, actor session.Session, id uint) error) {
	var req request.MembershipIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := action(c.Request.Context(), middleware.CurrentSession(c), req.Id); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
