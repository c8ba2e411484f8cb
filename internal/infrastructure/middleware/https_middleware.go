package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 把 HTTP 请求重定向到 HTTPS，并附加常用安全响应头
// 由 Nginx 终止 SSL 时不挂载
func TlsHandler(host string, port int) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        true,
		SSLHost:            host + ":" + strconv.Itoa(port),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		FrameDeny:          true,
		ContentTypeNosniff: true,
	})

	return func(c *gin.Context) {
		// 发生重定向时 Process 也返回错误，此时响应已写出
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Debug("tls redirect", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
