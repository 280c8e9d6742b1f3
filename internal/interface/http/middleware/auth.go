package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/circulation/pkg/errors"
	"github.com/xiebiao/circulation/pkg/jwt"
	"github.com/xiebiao/circulation/pkg/response"
)

// Context中的键
const (
	ctxHolderID = "holder_id"
	ctxRole     = "role"
)

// AuthMiddleware JWT认证中间件
// 设计说明:
// 1. Token由外部身份系统签发,这里只校验签名和有效期
// 2. Claims里的holder_id和role注入Context,后续Handler据此判断权限
type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequireAuth 要求携带有效Token
// 格式: Authorization: Bearer <token>
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Fail(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			response.Error(c, err) // ErrTokenExpired / ErrInvalidToken
			c.Abort()
			return
		}

		c.Set(ctxHolderID, claims.HolderID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireLibrarian 要求馆员角色,须放在RequireAuth之后
func (m *AuthMiddleware) RequireLibrarian() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsLibrarian(c) {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetHolderID 当前登录读者ID,未登录返回0
func GetHolderID(c *gin.Context) uint {
	if v, ok := c.Get(ctxHolderID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetRole 当前角色
func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// IsLibrarian 是否馆员
func IsLibrarian(c *gin.Context) bool {
	return GetRole(c) == jwt.RoleLibrarian
}

// MustGetHolderID 用于已经通过RequireAuth的Handler
func MustGetHolderID(c *gin.Context) uint {
	id := GetHolderID(c)
	if id == 0 {
		panic("holder_id not found in context")
	}
	return id
}
