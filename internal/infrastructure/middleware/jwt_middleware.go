package middleware

import (
	"net/http"
	"strings"

	"class_chat_server/internal/service/access"
	"class_chat_server/pkg/enum/role_enum"
	"class_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityKey 上下文中保存调用者身份的键
const IdentityKey = "identity"

// JWTAuth JWT 认证中间件
// 验证 Access Token，加载调用者身份并存入上下文
func JWTAuth(accessSvc *access.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, errorx.New(errorx.CodeUnauthorized, "Token 格式错误，请使用 Bearer Token"))
			return
		}
		id, err := accessSvc.Identify(c.Request.Context(), token)
		if err != nil {
			zap.L().Debug("认证失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abort(c, http.StatusUnauthorized, err)
			return
		}
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// RequireRole 只允许指定角色访问，需放在 JWTAuth 之后
func RequireRole(roles ...role_enum.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, errorx.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusOK, errorx.New(errorx.CodeForbidden, "无权访问"))
	}
}

// CurrentIdentity 取出 JWTAuth 写入的调用者身份
func CurrentIdentity(c *gin.Context) (*access.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*access.Identity)
	return id, ok && id != nil
}

// BearerToken 从 Authorization 头读取 Token，浏览器 WebSocket 无法设置请求头时回退到 ?token=
// 缺少凭证时返回 ("", true)，由 Identify 统一报告；格式错误时返回 false
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token"), true
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func abort(c *gin.Context, status int, err error) {
	pub := errorx.Public(err)
	c.AbortWithStatusJSON(status, gin.H{
		"code": pub.Code,
		"msg":  pub.Msg,
	})
}
