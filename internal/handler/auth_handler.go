// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"church_app_server/internal/dto/request"
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 邮箱注册
// POST /auth/register
// 请求体: request.RegisterRequest
// 响应: respond.LoginRespond
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Login 邮箱密码登录
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Refresh 刷新 Access Token
// POST /auth/refresh
//
// 同一账号在其他设备登录后，旧设备的 Refresh Token 失效
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Logout 注销当前账号的 Refresh Token
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.authSvc.Logout(c.Request.Context(), sess.UserID); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
