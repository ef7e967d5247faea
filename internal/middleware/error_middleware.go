package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schoolchat/internal/app/models/dto"
	"github.com/yigit/schoolchat/internal/pkg/apperrors"
)

// HandleAPIError maps an error to a status code and aborts with an error response
func HandleAPIError(c *gin.Context, err error) {
	var (
		status int
		detail *dto.ErrorDetail
	)

	switch {
	case apperrors.Is(err, apperrors.ErrTokenExpired):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")
	case apperrors.Is(err, apperrors.ErrAuth, apperrors.ErrTokenInvalid, apperrors.ErrInvalidFormat):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed")
	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
	default:
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
