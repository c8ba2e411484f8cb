package handler

import (
	"church_app_server/internal/dto/request"
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/service"

	"github.com/gin-gonic/gin"
)

// DevotionHandler 灵修助手
type DevotionHandler struct {
	devotionSvc service.DevotionService
}

func NewDevotionHandler(devotionSvc service.DevotionService) *DevotionHandler {
	return &DevotionHandler{devotionSvc: devotionSvc}
}

// Reflect POST /devotion/reflect
func (h *DevotionHandler) Reflect(c *gin.Context) {
	var req request.ReflectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.devotionSvc.Reflect(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
