package handler

import (
	"church_app_server/internal/dto/request"
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/service"
	"church_app_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 个人资料与成员目录
type ProfileHandler struct {
	profileSvc service.ProfileService
}

func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Me 当前用户资料
// GET /user/me
func (h *ProfileHandler) Me(c *gin.Context) {
	data, err := h.profileSvc.GetMe(middleware.CurrentSession(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateProfile POST /user/updateProfile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.profileSvc.UpdateProfile(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UploadAvatar POST /user/uploadAvatar，表单字段 file
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "请选择头像文件"))
		return
	}
	data, err := h.profileSvc.UploadAvatar(middleware.CurrentSession(c), fh)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMembers GET /admin/members?keyword=&page=&page_size=
func (h *ProfileHandler) ListMembers(c *gin.Context) {
	var req request.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.profileSvc.ListMembers(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SetRole POST /admin/members/setRole
func (h *ProfileHandler) SetRole(c *gin.Context) {
	var req request.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.profileSvc.SetRole(middleware.CurrentSession(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// SetStatus POST /admin/members/setStatus
func (h *ProfileHandler) SetStatus(c *gin.Context) {
	var req request.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.profileSvc.SetStatus(middleware.CurrentSession(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
