package feed

import (
	"context"

	"church_app_server/internal/dto/respond"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// feedService 帖子推送门面，供小组服务与 ws 处理器使用
type feedService struct {
	hub    *Hub
	broker Broker
}

// NewFeedService 构造函数
func NewFeedService(hub *Hub, broker Broker) *feedService {
	return &feedService{hub: hub, broker: broker}
}

// Broadcast 帖子已落库后调用，推送失败只记日志
func (s *feedService) Broadcast(ctx context.Context, post respond.GroupPostView) {
	if err := s.broker.Publish(ctx, post); err != nil {
		zap.L().Error("publish group post", zap.String("group_id", post.GroupId), zap.Error(err))
	}
}

// Connect 把当前请求升级为该小组的推送连接
func (s *feedService) Connect(c *gin.Context, userId, groupId string) {
	s.hub.Serve(c, userId, groupId)
}

// Kick 断开用户在该小组的推送连接
func (s *feedService) Kick(userId, groupId string) {
	if n := s.hub.Kick(userId, groupId); n > 0 {
		zap.L().Info("feed clients kicked", zap.String("user_id", userId), zap.String("group_id", groupId), zap.Int("count", n))
	}
}

// Run 运行分发循环直到 ctx 取消
func (s *feedService) Run(ctx context.Context) {
	s.broker.Start(ctx)
}

func (s *feedService) Close() {
	s.broker.Close()
}
