package media

import (
	"mime/multipart"

	"church_app_server/internal/dto/respond"
	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"
)

// mediaService 管理后台上传讲道音频、音乐与封面
type mediaService struct {
	store *Store
}

// NewMediaService 构造函数
func NewMediaService(store *Store) *mediaService {
	return &mediaService{store: store}
}

// Upload 仅管理员可用
func (s *mediaService) Upload(actor session.Session, fh *multipart.FileHeader) (*respond.UploadRespond, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	url, err := s.store.Save(fh)
	if err != nil {
		return nil, err
	}
	return &respond.UploadRespond{Url: url}, nil
}
