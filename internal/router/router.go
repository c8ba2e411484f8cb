// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"church_app_server/internal/handler"
	"church_app_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合对象与会话解析器
type Router struct {
	handlers *handler.Handlers
	resolver middleware.SessionResolver
}

func NewRouter(handlers *handler.Handlers, resolver middleware.SessionResolver) *Router {
	return &Router{handlers: handlers, resolver: resolver}
}

// RegisterRoutes 注册所有路由
// 所有请求先经过 Session 中间件，访客也能访问公开接口
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	public := r.Group("/", middleware.Session(rt.resolver))

	rt.RegisterAuthRoutes(public)
	rt.RegisterContentRoutes(public)
	rt.RegisterGroupRoutes(public)

	member := public.Group("/", middleware.RequireMember())
	rt.RegisterUserRoutes(member)
	rt.RegisterDevotionRoutes(member)
	rt.RegisterWebSocketRoutes(member)

	admin := member.Group("/admin", middleware.RequireAdmin())
	rt.RegisterAdminRoutes(admin)
}
