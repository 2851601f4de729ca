package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hostly/ordercore/internal/infrastructure/auth"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
	"github.com/hostly/ordercore/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler serves token introspection and revocation. Tokens are issued
// by the identity provider, or by cmd/token for operators.
type AuthHandler struct {
	BaseHandler
	revocations auth.RevocationList
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(revocations auth.RevocationList) *AuthHandler {
	return &AuthHandler{revocations: revocations}
}

type meResponse struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	TenantID    string `json:"tenant_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Me returns the calling principal
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.Success(c, meResponse{
		UserID:      p.UserID,
		Role:        string(p.Role),
		TenantID:    p.TenantID,
		DisplayName: p.DisplayName,
	})
}

// Revoke invalidates the caller's token for the rest of its lifetime
// POST /api/v1/auth/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	ctx := c.Request.Context()
	if err := h.revocations.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.L(ctx).Info("Token revoked", zap.String("jti", claims.ID))
	h.NoContent(c)
}
