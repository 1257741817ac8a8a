package middleware

import (
	"net/http"
	auth "shortlink-platform/pkg/jwt"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件，缺少或无效的令牌直接拒绝
func AuthMiddleware(jwtManager *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtManager)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少或无效的认证令牌"})
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// OptionalAuth 尽力识别身份的中间件：带有效令牌就记下用户，
// 否则按匿名请求放行。创建和列表接口允许匿名访问，用它而不是 AuthMiddleware。
func OptionalAuth(jwtManager *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, jwtManager); ok {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
		}
		c.Next()
	}
}

// bearerClaims 从 Authorization 头提取并校验 Bearer token
func bearerClaims(c *gin.Context, jwtManager *auth.TokenManager) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := jwtManager.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// CurrentUserID 读取中间件写入的用户 ID，匿名请求返回 nil
func CurrentUserID(c *gin.Context) *uint {
	value, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := value.(uint)
	if !ok {
		return nil
	}
	return &id
}
