package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequired Bearer token 认证。解析 JWT → 查黑名单 → 确认用户仍存在
// 且未被停用，然后把 user 放进 Context（只查一次库）。
func AuthRequired(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid authorization format"})
			return
		}

		claims, err := ParseToken(a.Config, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
			return
		}

		revoked, err := a.Revoked().IsRevoked(c.Request.Context(), claims.ID)
		if err == nil && revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "token revoked"})
			return
		}

		u, err := a.Repo.FindUserByID(c.Request.Context(), claims.UserID)
		if err != nil || !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set("userID", u.ID)
		c.Set("role", u.Role)
		c.Set("user", u)
		c.Set("jti", claims.ID)
		c.Next()
	}
}

// RoleRequired 放在 AuthRequired 之后
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}
