// Package router 提供 HTTP 路由注册
// 本文件定义社区小组相关的路由
package router

import (
	"church_app_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterGroupRoutes 小组列表对访客开放，其余需要登录
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groupGroup := rg.Group("/groups")
	{
		groupGroup.GET("", rt.handlers.Group.ListGroups) // 访客看到的状态均为 none

		memberGroup := groupGroup.Group("", middleware.RequireMember())
		memberGroup.POST("/join", rt.handlers.Group.Join)
		memberGroup.POST("/enter", rt.handlers.Group.Enter)
		memberGroup.GET("/posts", rt.handlers.Group.ListPosts)
		memberGroup.POST("/posts", rt.handlers.Group.CreatePost)
	}
}
