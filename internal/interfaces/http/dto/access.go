package dto

import "github.com/hostly/ordercore/internal/domain/access"

// GrantResponse is the effective grant on one module
type GrantResponse struct {
	Module  string `json:"module"`
	Enabled bool   `json:"enabled"`
	Create  bool   `json:"create"`
	Read    bool   `json:"read"`
	Update  bool   `json:"update"`
	Delete  bool   `json:"delete"`
}

// ToGrantResponse converts a domain grant
func ToGrantResponse(g access.PermissionGrant) GrantResponse {
	return GrantResponse{
		Module:  string(g.Module),
		Enabled: g.Enabled,
		Create:  g.Create,
		Read:    g.Read,
		Update:  g.Update,
		Delete:  g.Delete,
	}
}

// CheckQuery asks whether the caller may perform one action
type CheckQuery struct {
	Module string `form:"module" binding:"required,module"`
	Action string `form:"action" binding:"required,oneof=create read update delete"`
}

// CheckResponse answers a CheckQuery
type CheckResponse struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}

// OverrideRequest replaces the override of one module for a user. Nil flags
// fall through to the role preset.
type OverrideRequest struct {
	Module  string `json:"module" binding:"required,module"`
	Enabled *bool  `json:"enabled"`
	Create  *bool  `json:"create"`
	Read    *bool  `json:"read"`
	Update  *bool  `json:"update"`
	Delete  *bool  `json:"delete"`
}

// Override converts the request body to a domain override
func (r OverrideRequest) Override() access.GrantOverride {
	return access.GrantOverride{
		Enabled: r.Enabled,
		Create:  r.Create,
		Read:    r.Read,
		Update:  r.Update,
		Delete:  r.Delete,
	}
}

// OverrideResponse is a stored override
type OverrideResponse struct {
	Module  string `json:"module"`
	Enabled *bool  `json:"enabled,omitempty"`
	Create  *bool  `json:"create,omitempty"`
	Read    *bool  `json:"read,omitempty"`
	Update  *bool  `json:"update,omitempty"`
	Delete  *bool  `json:"delete,omitempty"`
}

// ToOverrideResponses lists overrides in module display order
func ToOverrideResponses(o access.Overrides) []OverrideResponse {
	out := make([]OverrideResponse, 0, len(o))
	for _, m := range access.AllModules {
		ov, ok := o[m]
		if !ok {
			continue
		}
		out = append(out, OverrideResponse{
			Module:  string(m),
			Enabled: ov.Enabled,
			Create:  ov.Create,
			Read:    ov.Read,
			Update:  ov.Update,
			Delete:  ov.Delete,
		})
	}
	return out
}

// MuteRequest toggles the audible alert of a live session
type MuteRequest struct {
	Muted bool `json:"muted"`
}

// PushPermissionRequest records the answer to the push permission prompt
type PushPermissionRequest struct {
	Granted bool `json:"granted"`
}

// SessionResponse describes a live session
type SessionResponse struct {
	ID             string `json:"id"`
	Muted          bool   `json:"muted"`
	PushPermission string `json:"push_permission"`
}
