// Package handler 提供 HTTP 请求处理器
// 本文件处理博客、讲道、音乐、活动与首页
package handler

import (
	"church_app_server/internal/dto/request"
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/service"
	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ContentHandler 内容类接口，读接口对访客开放，写接口在 /admin 下
type ContentHandler struct {
	blogSvc   service.BlogService
	sermonSvc service.SermonService
	musicSvc  service.MusicService
	eventSvc  service.EventService
	homeSvc   service.HomeService
	mediaSvc  service.MediaService
}

func NewContentHandler(
	blogSvc service.BlogService,
	sermonSvc service.SermonService,
	musicSvc service.MusicService,
	eventSvc service.EventService,
	homeSvc service.HomeService,
	mediaSvc service.MediaService,
) *ContentHandler {
	return &ContentHandler{
		blogSvc:   blogSvc,
		sermonSvc: sermonSvc,
		musicSvc:  musicSvc,
		eventSvc:  eventSvc,
		homeSvc:   homeSvc,
		mediaSvc:  mediaSvc,
	}
}

// Home GET /home
func (h *ContentHandler) Home(c *gin.Context) {
	HandleSuccess(c, h.homeSvc.Feed(c.Request.Context()))
}

// ==================== 博客 ====================

// ListCategories GET /blog/categories
func (h *ContentHandler) ListCategories(c *gin.Context) {
	data, err := h.blogSvc.ListCategories()
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListBlogPosts GET /blog/posts?category_id=&page=&page_size=
func (h *ContentHandler) ListBlogPosts(c *gin.Context) {
	var req request.BlogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.blogSvc.ListPosts(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetBlogPost GET /blog/post?id=
func (h *ContentHandler) GetBlogPost(c *gin.Context) {
	var req request.IdRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.blogSvc.GetPost(middleware.CurrentSession(c), req.Id)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SaveCategory POST /admin/blog/categories/save
func (h *ContentHandler) SaveCategory(c *gin.Context) {
	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.blogSvc.SaveCategory(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteCategory POST /admin/blog/categories/delete
func (h *ContentHandler) DeleteCategory(c *gin.Context) {
	h.deleteById(c, h.blogSvc.DeleteCategory)
}

// SaveBlogPost POST /admin/blog/posts/save
func (h *ContentHandler) SaveBlogPost(c *gin.Context) {
	var req request.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.blogSvc.SavePost(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteBlogPost POST /admin/blog/posts/delete
func (h *ContentHandler) DeleteBlogPost(c *gin.Context) {
	h.deleteById(c, h.blogSvc.DeletePost)
}

// ==================== 讲道 ====================

// ListSermons GET /sermons
func (h *ContentHandler) ListSermons(c *gin.Context) {
	var req request.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sermonSvc.List(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SaveSermon POST /admin/sermons/save
func (h *ContentHandler) SaveSermon(c *gin.Context) {
	var req request.SermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.sermonSvc.Save(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteSermon POST /admin/sermons/delete
func (h *ContentHandler) DeleteSermon(c *gin.Context) {
	h.deleteById(c, h.sermonSvc.Delete)
}

// ==================== 音乐 / 播客 ====================

// ListMusic GET /music?kind=
func (h *ContentHandler) ListMusic(c *gin.Context) {
	var req request.MusicListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.musicSvc.List(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SaveMusic POST /admin/music/save
func (h *ContentHandler) SaveMusic(c *gin.Context) {
	var req request.MusicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.musicSvc.Save(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMusic POST /admin/music/delete
func (h *ContentHandler) DeleteMusic(c *gin.Context) {
	h.deleteById(c, h.musicSvc.Delete)
}

// ==================== 活动 ====================

// ListEvents GET /events?all=
func (h *ContentHandler) ListEvents(c *gin.Context) {
	var req request.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.eventSvc.List(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ToggleRsvp POST /events/rsvp
func (h *ContentHandler) ToggleRsvp(c *gin.Context) {
	var req request.RsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.eventSvc.ToggleRsvp(middleware.CurrentSession(c), req.EventId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SaveEvent POST /admin/events/save
func (h *ContentHandler) SaveEvent(c *gin.Context) {
	var req request.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.eventSvc.Save(middleware.CurrentSession(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteEvent POST /admin/events/delete
func (h *ContentHandler) DeleteEvent(c *gin.Context) {
	h.deleteById(c, h.eventSvc.Delete)
}

// UploadMedia POST /admin/media/upload，表单字段 file
func (h *ContentHandler) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "请选择要上传的文件"))
		return
	}
	data, err := h.mediaSvc.Upload(middleware.CurrentSession(c), fh)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

func (h *ContentHandler) deleteById(c *gin.Context, del func(actor session.Session, id uint) error) {
	var req request.IdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := del(middleware.CurrentSession(c), req.Id); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
