package middleware

import (
	"context"
	"net/http"
	"strings"

	"authz/internal/model"
	"authz/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const currentUserKey = "currentUser"

// UserResolver resolves a bearer token to its user through the full two-layer
// check (token claims plus live session). A nil user with nil error means
// "no identity"; an error means the store failed.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*model.User, error)
}

// RoleSource answers whether a user currently holds a named role.
type RoleSource interface {
	HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)
}

// BearerToken extracts the token from the Authorization header, or "" when
// absent or malformed.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Identify runs on every request: it resolves the bearer token, if any, and
// attaches the user to the context. A missing or worthless token is not an
// error here; protected routes reject later. Store faults abort with an
// opaque 500.
func Identify(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
			return
		}
		if user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by Identify, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// RequireAuth rejects requests that carry no resolvable identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose identity does not hold the admin role.
// Must be registered after Identify.
func RequireAdmin(roles RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			return
		}

		isAdmin, err := roles.HasRole(c.Request.Context(), user.ID, model.AdminRoleName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
			return
		}
		c.Next()
	}
}
