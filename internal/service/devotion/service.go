// Package devotion 灵修助手：按经文出处生成默想并缓存
package devotion

import (
	"context"
	"strings"
	"time"

	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"

	"go.uber.org/zap"
)

const cacheTTL = 24 * time.Hour

// Generator 文本生成
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type devotionService struct {
	gen   Generator
	cache myredis.CacheService
}

// NewDevotionService gen 为 nil 时该功能不可用
func NewDevotionService(gen Generator, cache myredis.CacheService) *devotionService {
	return &devotionService{gen: gen, cache: cache}
}

// cacheKey 同一出处不区分大小写与多余空格
func cacheKey(reference string) string {
	return constants.REDIS_DEVOTION_PREFIX + strings.ToLower(strings.Join(strings.Fields(reference), " "))
}

// Reflect 返回某段经文的默想，相同出处 24 小时内复用
func (s *devotionService) Reflect(ctx context.Context, sess session.Session, req request.ReflectRequest) (*respond.ReflectRespond, error) {
	if sess.IsGuest() {
		return nil, errorx.ErrUnauthorized
	}
	if s.gen == nil {
		return nil, errorx.New(errorx.CodeServerBusy, "灵修助手暂未开放")
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "请填写经文出处")
	}

	key := cacheKey(reference)
	if cached, err := s.cache.Get(ctx, key); err != nil {
		zap.L().Warn("read devotion cache", zap.String("key", key), zap.Error(err))
	} else if cached != "" {
		return &respond.ReflectRespond{Reference: reference, Reflection: cached, Cached: true}, nil
	}

	prompt := "经文出处：" + reference
	if passage := strings.TrimSpace(req.Passage); passage != "" {
		prompt += "\n经文内容：" + passage
	}
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		zap.L().Error("generate devotion", zap.String("reference", reference), zap.Error(err))
		return nil, errorx.New(errorx.CodeServerBusy, "默想生成失败，请稍后重试")
	}

	if err := s.cache.Set(ctx, key, text, cacheTTL); err != nil {
		zap.L().Warn("write devotion cache", zap.String("key", key), zap.Error(err))
	}
	return &respond.ReflectRespond{Reference: reference, Reflection: text}, nil
}
