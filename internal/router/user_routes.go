// Package router 提供 HTTP 路由注册
// 本文件定义个人资料与灵修助手路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 个人资料（需要登录）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/me", rt.handlers.Profile.Me)
		userGroup.POST("/updateProfile", rt.handlers.Profile.UpdateProfile)
		userGroup.POST("/uploadAvatar", rt.handlers.Profile.UploadAvatar)
	}
}

func (rt *Router) RegisterDevotionRoutes(rg *gin.RouterGroup) {
	rg.POST("/devotion/reflect", rt.handlers.Devotion.Reflect)
}
