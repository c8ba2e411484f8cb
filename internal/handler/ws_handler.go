// Package handler 提供 HTTP 请求处理器
// 本文件处理小组实时推送的 WebSocket 连接
package handler

import (
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/service"
	"church_app_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// WsHandler 小组帖子推送
type WsHandler struct {
	membershipSvc service.MembershipService
	feedSvc       service.FeedService
}

func NewWsHandler(membershipSvc service.MembershipService, feedSvc service.FeedService) *WsHandler {
	return &WsHandler{membershipSvc: membershipSvc, feedSvc: feedSvc}
}

// GroupFeed 升级为 WebSocket 并订阅一个小组的新帖子
// GET /ws/group?groupId=xxx&token=xxx
// 只有已通过审核的成员可以连接，否则按普通 JSON 返回错误
func (h *WsHandler) GroupFeed(c *gin.Context) {
	groupId := c.Query("groupId")
	if groupId == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "groupId 不能为空"))
		return
	}
	sess := middleware.CurrentSession(c)
	if err := h.membershipSvc.CheckApproved(c.Request.Context(), sess, groupId); err != nil {
		HandleError(c, err)
		return
	}
	h.feedSvc.Connect(c, sess.UserID, groupId)
}
