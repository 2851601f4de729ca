package handler

import (
	"github.com/gin-gonic/gin"
	accessapp "github.com/hostly/ordercore/internal/application/access"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
)

// PermissionHandler exposes the permission matrix and override administration
type PermissionHandler struct {
	BaseHandler
	permissions *accessapp.Service
}

// NewPermissionHandler creates a permission handler
func NewPermissionHandler(permissions *accessapp.Service) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// Grants returns the caller's effective grant for every module
// GET /api/v1/permissions/me
func (h *PermissionHandler) Grants(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	grants := h.permissions.Grants(p)
	out := make([]dto.GrantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, dto.ToGrantResponse(g))
	}
	h.Success(c, out)
}

// Check answers whether the caller may perform one action
// GET /api/v1/permissions/check?module=orders&action=update
func (h *PermissionHandler) Check(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q dto.CheckQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	h.Success(c, dto.CheckResponse{
		Module:  q.Module,
		Action:  q.Action,
		Allowed: h.permissions.Check(p, access.Module(q.Module), access.Action(q.Action)),
	})
}

// Overrides lists the overrides of a user
// GET /api/v1/users/:user_id/overrides
func (h *PermissionHandler) Overrides(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	overrides, err := h.permissions.Overrides(c.Request.Context(), p, c.Param("user_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOverrideResponses(overrides))
}

// SetOverride replaces the override of one module for a user
// PUT /api/v1/users/:user_id/overrides
func (h *PermissionHandler) SetOverride(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	err := h.permissions.SetOverride(c.Request.Context(), p, c.Param("user_id"), access.Module(req.Module), req.Override())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ClearOverrides removes every override of a user
// DELETE /api/v1/users/:user_id/overrides
func (h *PermissionHandler) ClearOverrides(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.permissions.ClearOverrides(c.Request.Context(), p, c.Param("user_id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
