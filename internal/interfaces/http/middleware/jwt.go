package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/firecash/backend/internal/infrastructure/auth"
	"github.com/firecash/backend/internal/interfaces/http/dto"
)

const (
	// UserIDKey is the gin context key for the authenticated user's ID
	UserIDKey = "auth_user_id"
	// EmailKey is the gin context key for the authenticated user's email
	EmailKey = "auth_email"

	bearerPrefix = "Bearer "
)

// JWTAuth verifies the Authorization bearer token and stores the caller's
// identity in the gin context. Paths in skipPaths pass through unchecked.
func JWTAuth(validator *auth.TokenValidator, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing bearer token"))
			return
		}

		userID, claims, err := validator.Validate(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			message := "Invalid token"
			if err == auth.ErrExpiredToken {
				message = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok
}
