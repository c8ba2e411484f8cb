// Package auth 提供认证相关的业务逻辑
// 处理注册、登录、Token 刷新与注销
package auth

import (
	"context"
	"strings"
	"time"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/model"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"
	"church_app_server/pkg/util/jwt"
	"church_app_server/pkg/util/random"

	"go.uber.org/zap"
)

// authService 认证服务实现
type authService struct {
	repos      *repository.Repositories
	cache      myredis.CacheService // 只需要同步读写
	refreshTTL time.Duration
}

// NewAuthService 创建认证服务实例
// refreshHours 为 0 时使用默认有效期
func NewAuthService(repos *repository.Repositories, cache myredis.CacheService, refreshHours int) *authService {
	if refreshHours <= 0 {
		refreshHours = constants.REFRESH_TOKEN_EXPIRY_HOURS
	}
	return &authService{
		repos:      repos,
		cache:      cache,
		refreshTTL: time.Duration(refreshHours) * time.Hour,
	}
}

func tokenKey(userID string) string {
	return constants.REDIS_USER_TOKEN_PREFIX + userID
}

// Register 注册：账号与资料在同一事务中创建
func (s *authService) Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repos.Account.FindByEmail(email); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该邮箱已注册")
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("register: find account", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	uuid := random.NewUuid("U")
	account := model.Account{Uuid: uuid, Email: email, RawPassword: req.Password}
	profile := model.Profile{
		Uuid:        uuid,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       email,
		Avatar:      constants.DEFAULT_AVATAR,
		Role:        model.RoleMember,
		Status:      model.ProfileStatusNormal,
	}

	err := s.repos.Transaction(func(txRepos *repository.Repositories) error {
		if err := txRepos.Account.Create(&account); err != nil {
			return err
		}
		return txRepos.Profile.Create(&profile)
	})
	if err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errorx.KindOf(err) == errorx.KindConflict {
			return nil, errorx.New(errorx.CodeUserExist, "该邮箱已注册")
		}
		zap.L().Error("register: create account", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return s.issueTokens(ctx, &profile)
}

// Login 邮箱密码登录
func (s *authService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	account, err := s.repos.Account.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在，请注册")
		}
		zap.L().Error("login: find account", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !account.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}

	profile, err := s.repos.Profile.FindByUuid(account.Uuid)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Error("login: find profile", zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		// 资料缺失时按默认成员登录
		profile = &model.Profile{Uuid: account.Uuid, Email: account.Email, Avatar: constants.DEFAULT_AVATAR, Role: model.RoleMember}
	}
	if profile.Status == model.ProfileStatusDisabled {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
	}

	return s.issueTokens(ctx, profile)
}

// issueTokens 生成双 Token，并把 Refresh Token ID 存入 Redis，后登录的设备会顶掉之前的
func (s *authService) issueTokens(ctx context.Context, profile *model.Profile) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(profile.Uuid)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(profile.Uuid)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err := s.cache.Set(ctx, tokenKey(profile.Uuid), tokenID, s.refreshTTL); err != nil {
		// 不阻塞登录，只是之后无法刷新
		zap.L().Error("存储 Token ID 到 Redis 失败", zap.Error(err))
	}

	role := profile.Role
	if role == "" {
		role = model.RoleMember
	}
	return &respond.LoginRespond{
		UserId:       profile.Uuid,
		DisplayName:  profile.DisplayName,
		Email:        profile.Email,
		Avatar:       profile.Avatar,
		Role:         role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh 用 Refresh Token 换新的 Access Token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*respond.RefreshRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil || claims.Subject != jwt.SubjectRefreshToken {
		return nil, errorx.New(errorx.CodeUnauthorized, "Refresh Token 无效")
	}
	ok, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("refresh: validate token id", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.New(errorx.CodeUnauthorized, "登录已失效，请重新登录")
	}
	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.RefreshRespond{AccessToken: accessToken}, nil
}

// Logout 删除 Refresh Token ID，已签发的 Access Token 自然过期
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, tokenKey(userID)); err != nil {
		zap.L().Error("logout", zap.String("user_id", userID), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// ValidateTokenID 验证用户的 Token ID 是否仍然有效
func (s *authService) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, tokenKey(userID))
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}
