// Package session 定义请求的身份上下文
// 业务入口显式接收 Session，而不是在内部查询全局的当前用户
package session

import (
	"strings"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/model"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"

	"go.uber.org/zap"
)

// Session 当前请求的身份
// 游客的 UserID 为空，Profile 为 nil
type Session struct {
	UserID  string
	Role    string
	Profile *model.Profile
}

// Guest 未登录会话
func Guest() Session {
	return Session{Role: model.RoleGuest}
}

// Member 构造普通成员会话，测试与内部调用使用
func Member(userID string) Session {
	return Session{UserID: userID, Role: model.RoleMember}
}

// Admin 构造管理员会话
func Admin(userID string) Session {
	return Session{UserID: userID, Role: model.RoleAdmin}
}

// IsGuest 是否未登录
func (s Session) IsGuest() bool {
	return s.UserID == ""
}

// IsAdmin 是否管理员
func (s Session) IsAdmin() bool {
	return !s.IsGuest() && s.Role == model.RoleAdmin
}

// Resolver 根据用户 id 解析出会话
type Resolver struct {
	profiles repository.ProfileRepository
	accounts repository.AccountRepository
}

// NewResolver 创建解析器
func NewResolver(repos *repository.Repositories) *Resolver {
	return &Resolver{profiles: repos.Profile, accounts: repos.Account}
}

// Resolve 解析会话
//   - userID 为空：游客
//   - 资料不存在：默认成员资料
//   - 资料被禁用：Unauthorized
func (r *Resolver) Resolve(userID string) (Session, error) {
	if userID == "" {
		return Guest(), nil
	}

	profile, err := r.profiles.FindByUuid(userID)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Error("resolve session: load profile", zap.String("user_id", userID), zap.Error(err))
			return Session{}, errorx.ErrServerBusy
		}
		return Session{UserID: userID, Role: model.RoleMember, Profile: r.defaultProfile(userID)}, nil
	}

	if profile.Status == model.ProfileStatusDisabled {
		return Session{}, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
	}

	role := profile.Role
	if role != model.RoleAdmin {
		role = model.RoleMember
	}
	return Session{UserID: userID, Role: role, Profile: profile}, nil
}

// defaultProfile 资料尚未创建时的默认资料，名称取邮箱前缀
func (r *Resolver) defaultProfile(userID string) *model.Profile {
	p := &model.Profile{
		Uuid:        userID,
		DisplayName: "Member",
		Avatar:      constants.DEFAULT_AVATAR,
		Role:        model.RoleMember,
	}
	if r.accounts == nil {
		return p
	}
	account, err := r.accounts.FindByUuid(userID)
	if err != nil {
		return p
	}
	p.Email = account.Email
	if name, _, ok := strings.Cut(account.Email, "@"); ok && name != "" {
		p.DisplayName = name
	}
	return p
}
