// Package profile 处理个人资料与管理员成员目录
package profile

import (
	"mime/multipart"
	"strings"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/internal/service/media"
	"church_app_server/pkg/errorx"

	"go.uber.org/zap"
)

// profileService 个人资料业务实现
type profileService struct {
	repos   *repository.Repositories
	avatars *media.Store
}

// NewProfileService 构造函数
func NewProfileService(repos *repository.Repositories, avatars *media.Store) *profileService {
	return &profileService{repos: repos, avatars: avatars}
}

func toRespond(p *model.Profile) respond.ProfileRespond {
	rsp := respond.ProfileRespond{
		UserId:      p.Uuid,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Avatar:      p.Avatar,
		Bio:         p.Bio,
		Phone:       p.Phone,
		Role:        p.Role,
		Status:      p.Status,
	}
	if !p.CreatedAt.IsZero() {
		rsp.CreatedAt = p.CreatedAt.Format("2006-01-02")
	}
	return rsp
}

// GetMe 当前用户资料，资料未创建时返回会话中的默认资料
func (s *profileService) GetMe(sess session.Session) (*respond.ProfileRespond, error) {
	if sess.IsGuest() {
		return nil, errorx.ErrUnauthorized
	}
	if sess.Profile == nil {
		return nil, errorx.New(errorx.CodeNotFound, "资料不存在")
	}
	rsp := toRespond(sess.Profile)
	rsp.Role = sess.Role
	return &rsp, nil
}

// UpdateProfile 更新自己的资料，资料不存在时创建
func (s *profileService) UpdateProfile(sess session.Session, req request.UpdateProfileRequest) (*respond.ProfileRespond, error) {
	if sess.IsGuest() {
		return nil, errorx.ErrUnauthorized
	}

	profile, err := s.repos.Profile.FindByUuid(sess.UserID)
	if err != nil && !errorx.IsNotFound(err) {
		zap.L().Error("update profile: find", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	exists := err == nil
	if !exists {
		profile = &model.Profile{Uuid: sess.UserID, Role: model.RoleMember}
		if sess.Profile != nil {
			profile.Email = sess.Profile.Email
			profile.Avatar = sess.Profile.Avatar
		}
	}
	profile.DisplayName = strings.TrimSpace(req.DisplayName)
	profile.Bio = req.Bio
	profile.Phone = req.Phone
	if req.Avatar != "" {
		profile.Avatar = req.Avatar
	}

	if exists {
		err = s.repos.Profile.Update(profile)
	} else {
		err = s.repos.Profile.Create(profile)
	}
	if err != nil {
		zap.L().Error("update profile: save", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rsp := toRespond(profile)
	return &rsp, nil
}

// UploadAvatar 保存头像并写入资料
func (s *profileService) UploadAvatar(sess session.Session, fh *multipart.FileHeader) (*respond.UploadRespond, error) {
	if sess.IsGuest() {
		return nil, errorx.ErrUnauthorized
	}
	url, err := s.avatars.Save(fh)
	if err != nil {
		return nil, err
	}

	profile, err := s.repos.Profile.FindByUuid(sess.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			// 资料还没创建，先返回地址，由前端在保存资料时提交
			return &respond.UploadRespond{Url: url}, nil
		}
		zap.L().Error("upload avatar: find profile", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	profile.Avatar = url
	if err := s.repos.Profile.Update(profile); err != nil {
		zap.L().Error("upload avatar: update profile", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.UploadRespond{Url: url}, nil
}

// ListMembers 管理员成员目录
func (s *profileService) ListMembers(req request.MemberListRequest) (*respond.PageWrapper[respond.ProfileRespond], error) {
	req.Normalize()
	profiles, total, err := s.repos.Profile.Search(strings.TrimSpace(req.Keyword), req.Page, req.PageSize)
	if err != nil {
		zap.L().Error("list members", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.ProfileRespond, 0, len(profiles))
	for i := range profiles {
		list = append(list, toRespond(&profiles[i]))
	}
	return &respond.PageWrapper[respond.ProfileRespond]{List: list, Total: total}, nil
}

// SetRole 设置角色，管理员不能取消自己的管理员身份
func (s *profileService) SetRole(actor session.Session, req request.SetRoleRequest) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	if req.UserId == actor.UserID && req.Role != model.RoleAdmin {
		return errorx.New(errorx.CodeInvalidParam, "不能取消自己的管理员身份")
	}
	if err := s.repos.Profile.UpdateRole(req.UserId, req.Role); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeUserNotExist, "成员不存在")
		}
		zap.L().Error("set role", zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// SetStatus 启用/禁用成员
func (s *profileService) SetStatus(actor session.Session, req request.SetStatusRequest) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	if req.Status == nil {
		return errorx.ErrInvalidParam
	}
	if req.UserId == actor.UserID && *req.Status == model.ProfileStatusDisabled {
		return errorx.New(errorx.CodeInvalidParam, "不能禁用自己")
	}
	if err := s.repos.Profile.UpdateStatus(req.UserId, *req.Status); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeUserNotExist, "成员不存在")
		}
		zap.L().Error("set status", zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}
