package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// RequireAuth resolves the authenticated identity from the bearer access
// token. Every protected route passes through here before any authorization
// check; no endpoint can reach a handler without an identity in context.
func RequireAuth(tokens *auth.TokenService, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "Authorization token is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			apierrors.Unauthorized(c, "Authorization header format must be Bearer {token}")
			c.Abort()
			return
		}

		userID, err := tokens.ValidateAccess(parts[1])
		if err != nil {
			respondTokenError(c, err)
			c.Abort()
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil || !user.IsActive {
			apierrors.Unauthorized(c, "User not found or inactive")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

func respondTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenExpired, err.Error())
	case errors.Is(err, auth.ErrTokenRevoked):
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenRevoked, err.Error())
	default:
		apierrors.UnauthorizedWithCode(c, apierrors.ErrCodeTokenMalformed, auth.ErrTokenMalformed.Error())
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	userID, ok := value.(uint64)
	return userID, ok
}

// GetCurrentUser retrieves the authenticated user record from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok
}
