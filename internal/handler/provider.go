// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"church_app_server/internal/service"
)

// Handlers 聚合所有 Handler 实例，Router 层通过它注册路由
type Handlers struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Group    *GroupHandler
	Content  *ContentHandler
	Devotion *DevotionHandler
	Ws       *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth),
		Profile:  NewProfileHandler(svc.Profile),
		Group:    NewGroupHandler(svc.Membership, svc.Group),
		Content:  NewContentHandler(svc.Blog, svc.Sermon, svc.Music, svc.Event, svc.Home, svc.Media),
		Devotion: NewDevotionHandler(svc.Devotion),
		Ws:       NewWsHandler(svc.Membership, svc.Feed),
	}
}
