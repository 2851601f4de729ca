package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequireModule rejects requests whose principal lacks action on module.
// Services check again; this only fails fast at the edge.
func RequireModule(matrix *access.Matrix, module access.Module, action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required", c.GetString("request_id")))
			return
		}
		if !matrix.Check(p, module, action) {
			logger.L(c.Request.Context()).Info("Permission denied",
				zap.String("role", string(p.Role)),
				zap.String("module", string(module)),
				zap.String("action", string(action)))
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodePermissionDenied, "Permission denied", c.GetString("request_id")))
			return
		}
		c.Next()
	}
}
