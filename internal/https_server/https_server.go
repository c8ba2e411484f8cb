// Package https_server 负责创建 Gin 引擎并配置中间件、静态资源和路由
package https_server

import (
	"church_app_server/internal/config"
	"church_app_server/internal/handler"
	"church_app_server/internal/infrastructure/logger"
	"church_app_server/internal/infrastructure/middleware"
	"church_app_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎
// 顺序：日志与恢复中间件 → 可选 TLS 重定向 → CORS → 静态资源 → 业务路由
func Init(cfg *config.Config, handlers *handler.Handlers, resolver middleware.SessionResolver) *gin.Engine {
	if cfg.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	// 由 Nginx 终结 SSL 时保持关闭
	if cfg.SecurityConfig.TlsRedirect {
		engine.Use(middleware.TlsHandler(cfg.MainConfig.Host, cfg.MainConfig.Port))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 上传后返回的 url 即为这里映射的路径
	engine.Static("/static/avatars", cfg.StaticSrcConfig.StaticAvatarPath)
	engine.Static("/static/media", cfg.StaticSrcConfig.StaticMediaPath)

	router.NewRouter(handlers, resolver).RegisterRoutes(engine)
	return engine
}
