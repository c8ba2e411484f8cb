// Package router 提供 HTTP 路由注册
// 本文件定义管理员相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理员路由，调用方已挂好 RequireAdmin
func (rt *Router) RegisterAdminRoutes(rg *gin.RouterGroup) {
	h := rt.handlers

	// ===== 成员管理 =====
	memberGroup := rg.Group("/members")
	{
		memberGroup.GET("/list", h.Profile.ListMembers)
		memberGroup.POST("/setRole", h.Profile.SetRole)
		memberGroup.POST("/setStatus", h.Profile.SetStatus)
	}

	// ===== 小组管理 =====
	groupGroup := rg.Group("/groups")
	{
		groupGroup.GET("/list", h.Group.AdminListGroups)
		groupGroup.POST("/create", h.Group.CreateGroup)
		groupGroup.POST("/update", h.Group.UpdateGroup)
		groupGroup.POST("/delete", h.Group.DeleteGroup)
	}

	// ===== 入群审核 =====
	membershipGroup := rg.Group("/memberships")
	{
		membershipGroup.GET("/list", h.Group.ListMemberships)
		membershipGroup.POST("/approve", h.Group.Approve)
		membershipGroup.POST("/decline", h.Group.Decline)
		membershipGroup.POST("/remove", h.Group.Remove)
	}

	// ===== 内容管理 =====
	blogGroup := rg.Group("/blog")
	{
		blogGroup.POST("/categories/save", h.Content.SaveCategory)
		blogGroup.POST("/categories/delete", h.Content.DeleteCategory)
		blogGroup.POST("/posts/save", h.Content.SaveBlogPost)
		blogGroup.POST("/posts/delete", h.Content.DeleteBlogPost)
	}
	rg.POST("/sermons/save", h.Content.SaveSermon)
	rg.POST("/sermons/delete", h.Content.DeleteSermon)
	rg.POST("/music/save", h.Content.SaveMusic)
	rg.POST("/music/delete", h.Content.DeleteMusic)
	rg.POST("/events/save", h.Content.SaveEvent)
	rg.POST("/events/delete", h.Content.DeleteEvent)

	rg.POST("/media/upload", h.Content.UploadMedia)
}
