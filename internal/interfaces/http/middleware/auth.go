package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/infrastructure/auth"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys
const (
	PrincipalKey  = "principal"
	ClaimsKey     = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// OverrideLoader supplies the stored permission overrides of a user
type OverrideLoader interface {
	LoadOverrides(ctx context.Context, userID string) (access.Overrides, error)
}

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Overrides is required; overrides are never carried in the token
	Overrides OverrideLoader
	// Revocations is optional
	Revocations auth.RevocationList
	Logger      *zap.Logger
}

// Authenticate validates the bearer token and stores the acting principal,
// with its overrides, on the gin context.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimPrefix(header, BearerPrefix)
		if token == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.Validate(token)
		if err != nil {
			abortUnauthorized(c, cfg, err, "Token validation failed")
			return
		}

		ctx := c.Request.Context()
		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
			if err != nil {
				// Fail open: revocation storage outages must not lock out every user
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, cfg, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		principal := claims.Principal()
		overrides, err := cfg.Overrides.LoadOverrides(ctx, principal.UserID)
		if err != nil {
			logger.L(ctx).Error("Failed to load permission overrides",
				zap.String("user_id", principal.UserID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred", c.GetString("request_id")))
			return
		}
		principal.Overrides = overrides

		c.Set(ClaimsKey, claims)
		c.Set(PrincipalKey, principal)

		ctx = logger.WithUserID(ctx, principal.UserID)
		if principal.HasTenant() {
			ctx = logger.WithTenantID(ctx, principal.TenantID)
		}
		c.Request = c.Request.WithContext(ctx)
		tagSpan(c, principal)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, cfg AuthConfig, err error, message string) {
	cfg.Logger.Warn("Authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path))

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg, c.GetString("request_id")))
}

// GetPrincipal returns the authenticated principal
func GetPrincipal(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
