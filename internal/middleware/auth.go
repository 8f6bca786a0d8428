package middleware

import (
	"strings"

	"gocast_backend/internal/auth"
	"gocast_backend/internal/logger"
	"gocast_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and rejects revoked ones.
// blacklist may be nil when Redis is not configured.
func AuthMiddleware(tokens *auth.TokenManager, blacklist auth.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := tokens.Parse(ctx, tokenStr)
		if err != nil {
			logger.CtxWarn(ctx, "rejected bearer token", "error", err.Error(), "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsRevoked(ctx, claims.JTI)
			if err != nil {
				apperrors.HandleError(c, apperrors.InternalError(err))
				return
			}
			if revoked {
				apperrors.HandleError(c, apperrors.ErrInvalidToken)
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, claims.UserID))
		c.Next()
	}
}

// RoleMiddleware restricts a group to the given role.
func RoleMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("role")
		if !ok {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			return
		}
		if roleStr, _ := role.(string); roleStr != requiredRole {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}
