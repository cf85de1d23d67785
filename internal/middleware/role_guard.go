package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"swift-dispatch/internal/pkg/apperrors"
)

func RoleGuard(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !slices.Contains(allowed, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, apperrors.ErrorResponse{
				Error: apperrors.ErrorBody{
					Code:    "FORBIDDEN",
					Message: "insufficient permissions",
				},
			})
			return
		}

		c.Next()
	}
}
