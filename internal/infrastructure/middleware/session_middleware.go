package middleware

import (
	"net/http"
	"strings"

	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"
	"church_app_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxSession      = "session"
	ctxUserID       = "user_id"
	ctxTokenInvalid = "token_invalid"
)

// SessionResolver 根据用户 id 构建会话
type SessionResolver interface {
	Resolve(userID string) (session.Session, error)
}

// bearerToken 优先取 Authorization 头，WebSocket 握手时取 token 查询参数
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// Session 为每个请求建立会话
// 没有令牌或令牌无效时按访客处理，由 RequireMember 决定是否拒绝
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Guest()

		if token := bearerToken(c); token != "" {
			claims, err := jwt.ParseToken(token)
			if err != nil || claims.Subject != jwt.SubjectAccessToken {
				c.Set(ctxTokenInvalid, true)
			} else {
				resolved, err := resolver.Resolve(claims.UserID)
				if err != nil {
					if errorx.KindOf(err) == errorx.KindUnauthorized {
						abortUnauthorized(c, errorx.GetCode(err), err.Error())
						return
					}
					zap.L().Error("resolve session", zap.String("user_id", claims.UserID), zap.Error(err))
					c.AbortWithStatusJSON(http.StatusOK, gin.H{
						"code": errorx.CodeServerBusy,
						"msg":  errorx.ErrServerBusy.Msg,
						"data": nil,
					})
					return
				}
				sess = resolved
				c.Set(ctxUserID, sess.UserID)
			}
		}

		c.Set(ctxSession, sess)
		c.Next()
	}
}

// RequireMember 拒绝访客
func RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsGuest() {
			c.Next()
			return
		}
		if c.GetBool(ctxTokenInvalid) {
			abortUnauthorized(c, errorx.CodeUnauthorized, "Token 已过期或无效，请重新登录")
			return
		}
		abortUnauthorized(c, errorx.CodeUnauthorized, errorx.ErrUnauthorized.Msg)
	}
}

// RequireAdmin 只放行管理员，需放在 RequireMember 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).IsAdmin() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": errorx.CodeForbidden,
			"msg":  errorx.ErrForbidden.Msg,
			"data": nil,
		})
	}
}

// CurrentSession 取出当前请求的会话，未经过 Session 中间件时为访客
func CurrentSession(c *gin.Context) session.Session {
	if v, ok := c.Get(ctxSession); ok {
		if sess, ok := v.(session.Session); ok {
			return sess
		}
	}
	return session.Guest()
}

func abortUnauthorized(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": code,
		"msg":  msg,
		"data": nil,
	})
}
