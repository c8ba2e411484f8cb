// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"church_app_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册、登录、刷新对访客开放，注销需要登录
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", rt.handlers.Auth.Register)
		authGroup.POST("/login", rt.handlers.Auth.Login)
		// 使用 Refresh Token 换取新的 Access Token
		authGroup.POST("/refresh", rt.handlers.Auth.Refresh)
		authGroup.POST("/logout", middleware.RequireMember(), rt.handlers.Auth.Logout)
	}
}
