package access

import (
	"context"
	"strings"

	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/shared"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Service answers permission queries and manages per-user overrides.
// Override administration is gated on module users.
type Service struct {
	matrix    *access.Matrix
	overrides access.OverrideRepository
}

// NewService creates a permission service
func NewService(matrix *access.Matrix, overrides access.OverrideRepository) *Service {
	return &Service{matrix: matrix, overrides: overrides}
}

// Matrix returns the matrix used for checks
func (s *Service) Matrix() *access.Matrix { return s.matrix }

// Check reports whether p may perform action on module
func (s *Service) Check(p access.Principal, module access.Module, action access.Action) bool {
	return s.matrix.Check(p, module, action)
}

// Grants returns p's effective grant for every module
func (s *Service) Grants(p access.Principal) []access.PermissionGrant {
	return s.matrix.Grants(p)
}

// LoadOverrides returns the stored overrides of a user, used when resolving
// the principal of a request.
func (s *Service) LoadOverrides(ctx context.Context, userID string) (access.Overrides, error) {
	if strings.TrimSpace(userID) == "" {
		return access.Overrides{}, nil
	}
	return s.overrides.FindByUser(ctx, userID)
}

// Overrides lists a user's overrides on behalf of actor
func (s *Service) Overrides(ctx context.Context, actor access.Principal, userID string) (access.Overrides, error) {
	if err := s.matrix.Require(actor, access.ModuleUsers, access.ActionRead); err != nil {
		return nil, err
	}
	return s.overrides.FindByUser(ctx, userID)
}

// SetOverride replaces the override for one module of a user
func (s *Service) SetOverride(ctx context.Context, actor access.Principal, userID string, module access.Module, override access.GrantOverride) error {
	if err := s.matrix.Require(actor, access.ModuleUsers, access.ActionUpdate); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "User id cannot be empty")
	}
	if !module.IsValid() {
		return shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown module %q", module)
	}
	if override.IsEmpty() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Override must set at least one flag")
	}
	if err := s.overrides.Upsert(ctx, userID, module, override); err != nil {
		return err
	}
	logger.L(ctx).Info("Permission override set",
		zap.String("actor_id", actor.UserID),
		zap.String("target_user_id", userID),
		zap.String("module", string(module)))
	return nil
}

// ClearOverrides removes every override of a user
func (s *Service) ClearOverrides(ctx context.Context, actor access.Principal, userID string) error {
	if err := s.matrix.Require(actor, access.ModuleUsers, access.ActionDelete); err != nil {
		return err
	}
	if err := s.overrides.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	logger.L(ctx).Info("Permission overrides cleared",
		zap.String("actor_id", actor.UserID),
		zap.String("target_user_id", userID))
	return nil
}
