package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"church_app_server/internal/config"
	dao "church_app_server/internal/dao/mysql"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/handler"
	"church_app_server/internal/https_server"
	"church_app_server/internal/infrastructure/logger"
	"church_app_server/internal/infrastructure/mq"
	"church_app_server/internal/service"
	"church_app_server/internal/service/devotion"
	"church_app_server/internal/service/feed"
	"church_app_server/internal/service/media"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// version 由构建参数注入：-ldflags "-X main.version=..."
var version = "dev"

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志与错误上报
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync() //nolint:errcheck
	if enabled, err := logger.InitSentry(&conf.SentryConfig, version); err != nil {
		zap.L().Warn("sentry 初始化失败", zap.Error(err))
	} else if enabled {
		defer logger.FlushSentry()
	}

	// 3. 初始化数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis：异步缓存与入群备用存储
	rdb, err := myredis.Init(&conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	defer rdb.Close()
	cache := myredis.NewRedisCache(rdb, 4, 1000)
	defer cache.Close()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)

	// 6. 小组推送与入群事件：channel 单机模式或 kafka 多实例模式
	hub := feed.NewHub()
	var (
		broker    feed.Broker
		publisher mq.EventPublisher
	)
	if conf.KafkaConfig.MessageMode == "kafka" {
		kc := mq.NewKafkaClient(conf.KafkaConfig)
		defer kc.Close()
		broker = feed.NewKafkaBroker(hub,
			kc.Writer(conf.KafkaConfig.PostTopic),
			kc.Reader(conf.KafkaConfig.PostTopic, conf.KafkaConfig.ConsumerGroup))
		publisher = mq.NewKafkaEventPublisher(kc.Writer(conf.KafkaConfig.MembershipTopic))
	} else {
		broker = feed.NewChannelBroker(hub)
		publisher = mq.LogEventPublisher{}
	}
	zap.L().Info("推送模式", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 7. 上传目录
	avatars, err := media.NewStore(conf.StaticSrcConfig.StaticAvatarPath, "/static/avatars", constants.AVATAR_MAX_SIZE, "image/")
	if err != nil {
		zap.L().Fatal("头像目录初始化失败", zap.Error(err))
	}
	mediaStore, err := media.NewStore(conf.StaticSrcConfig.StaticMediaPath, "/static/media", constants.FILE_MAX_SIZE)
	if err != nil {
		zap.L().Fatal("媒体目录初始化失败", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 8. 灵修助手，未配置 ApiKey 时关闭
	var generator devotion.Generator
	gemini, err := devotion.NewGeminiGenerator(ctx, conf.GeminiConfig)
	if err != nil {
		zap.L().Warn("灵修助手初始化失败，已关闭", zap.Error(err))
	} else if gemini != nil {
		generator = gemini
		defer gemini.Close() //nolint:errcheck
	}

	// 9. Service、Handler 与路由 (依赖注入)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("参数校验翻译初始化失败", zap.Error(err))
	}
	services := service.NewServices(service.Deps{
		Repos:        repos,
		Cache:        cache,
		Fallback:     myredis.NewMembershipFallbackStore(rdb),
		Publisher:    publisher,
		FeedHub:      hub,
		FeedBroker:   broker,
		Avatars:      avatars,
		Media:        mediaStore,
		Generator:    generator,
		RefreshHours: conf.JWTConfig.RefreshTokenExpiry,
	})
	engine := https_server.Init(conf, handler.NewHandlers(services), session.NewResolver(repos))

	// 10. 启动服务
	go services.Feed.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	services.Feed.Close()

	zap.L().Info("服务器已关闭")
}
