package router

import (
	"church_app_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterContentRoutes 首页、博客、讲道、音乐与活动的只读接口
func (rt *Router) RegisterContentRoutes(rg *gin.RouterGroup) {
	content := rt.handlers.Content

	rg.GET("/home", content.Home)

	blogGroup := rg.Group("/blog")
	{
		blogGroup.GET("/posts", content.ListBlogPosts)
		blogGroup.GET("/post", content.GetBlogPost)
		blogGroup.GET("/categories", content.ListCategories)
	}

	rg.GET("/sermons", content.ListSermons)
	rg.GET("/music", content.ListMusic)

	eventGroup := rg.Group("/events")
	{
		eventGroup.GET("", content.ListEvents)
		eventGroup.POST("/rsvp", middleware.RequireMember(), content.ToggleRsvp)
	}
}
