package jwt

import (
	"context"
	"strings"

	"NotifyLink/pkg/back"
	"NotifyLink/pkg/util/myjwt"
	"NotifyLink/pkg/xerr"
	"NotifyLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CtxUUID     = "uuid"
	CtxUsername = "username"
	CtxClaims   = "claims"
)

// Verifier 身份校验器
type Verifier interface {
	Verify(ctx context.Context, token string) (*myjwt.CustomClaims, error)
}

func Auth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := v.Verify(c.Request.Context(), tokenString)
		if err != nil {
			zlog.Debug("http auth rejected", zap.Error(err))
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(CtxUUID, claims.SubjectID())
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// InternalKey 内部接口鉴权，供同机房的内容服务直接创建通知
func InternalKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || c.GetHeader("X-Internal-Key") != key {
			back.Error(c, xerr.Unauthorized, "invalid internal key")
			c.Abort()
			return
		}
		c.Next()
	}
}
