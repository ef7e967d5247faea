package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/app/models/dto"
	"github.com/yigit/schoolchat/internal/pkg/apperrors"
	"github.com/yigit/schoolchat/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextRoleType = "roleType"
	ContextSchoolID = "schoolID"
)

// IdentityVerifier turns a bearer token into a verified identity
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, token string) (models.Identity, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	verifier IdentityVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err == nil {
			var identity models.Identity
			identity, err = m.verifier.VerifyIdentity(c.Request.Context(), tokenString)
			if err == nil {
				c.Set(ContextUserID, identity.UserID)
				c.Set(ContextRoleType, string(identity.Role))
				c.Set(ContextSchoolID, identity.SchoolID)
				c.Next()
				return
			}
		}

		HandleAPIError(c, err)
	}
}

// RoleRequired middleware to check if user has one of the allowed roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Ensure JWTAuth middleware has run first
		role, exists := c.Get(ContextRoleType)
		if !exists {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User role not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if roleStr == string(allowed) {
				c.Next()
				return
			}
		}

		HandleAPIError(c, apperrors.ErrPermissionDenied)
	}
}
