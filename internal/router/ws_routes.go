// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 小组新帖推送（需要登录且已通过审核）
// 浏览器无法在握手时设置请求头，令牌通过查询参数传递
// 请求示例: ws://host:port/ws/group?groupId=G240101abc&token=xxx
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/group", rt.handlers.Ws.GroupFeed)
}
