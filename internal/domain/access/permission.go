package access

import (
	"strings"

	"github.com/hostly/ordercore/internal/domain/shared"
)

// Module is a closed set of application areas guarded by the matrix
type Module string

const (
	ModuleRooms        Module = "rooms"
	ModuleOrders       Module = "orders"
	ModuleDashboard    Module = "dashboard"
	ModuleFinancialHub Module = "financial_hub"
	ModuleSupplyChain  Module = "supply_chain"
	ModuleImages       Module = "images"
	ModuleUsers        Module = "users"
	ModuleSettings     Module = "settings"
)

// AllModules lists every module in display order
var AllModules = []Module{
	ModuleRooms,
	ModuleOrders,
	ModuleDashboard,
	ModuleFinancialHub,
	ModuleSupplyChain,
	ModuleImages,
	ModuleUsers,
	ModuleSettings,
}

// IsValid returns true if the module is known
func (m Module) IsValid() bool {
	for _, known := range AllModules {
		if m == known {
			return true
		}
	}
	return false
}

// ParseModule converts a string to a Module
func ParseModule(s string) (Module, error) {
	m := Module(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown module %q", s)
	}
	return m, nil
}

// Action is a CRUD verb checked against a grant
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ParseAction converts a string to an Action
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return a, nil
	}
	return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown action %q", s)
}

// PermissionGrant is the fixed-shape permission record for one module.
// CRUD flags are ignored when Enabled is false.
type PermissionGrant struct {
	Module  Module `json:"module"`
	Enabled bool   `json:"enabled"`
	Create  bool   `json:"create"`
	Read    bool   `json:"read"`
	Update  bool   `json:"update"`
	Delete  bool   `json:"delete"`
}

// Allows reports whether the grant permits the action
func (g PermissionGrant) Allows(action Action) bool {
	if !g.Enabled {
		return false
	}
	switch action {
	case ActionCreate:
		return g.Create
	case ActionRead:
		return g.Read
	case ActionUpdate:
		return g.Update
	case ActionDelete:
		return g.Delete
	}
	return false
}

// Normalized clears CRUD flags on a disabled grant
func (g PermissionGrant) Normalized() PermissionGrant {
	if !g.Enabled {
		return PermissionGrant{Module: g.Module}
	}
	return g
}

// GrantOverride is a sparse per-user override; nil fields keep the preset value
type GrantOverride struct {
	Enabled *bool `json:"enabled,omitempty"`
	Create  *bool `json:"create,omitempty"`
	Read    *bool `json:"read,omitempty"`
	Update  *bool `json:"update,omitempty"`
	Delete  *bool `json:"delete,omitempty"`
}

// IsEmpty reports whether the override changes nothing
func (o GrantOverride) IsEmpty() bool {
	return o.Enabled == nil && o.Create == nil && o.Read == nil && o.Update == nil && o.Delete == nil
}

// Apply merges the override on top of a grant
func (o GrantOverride) Apply(g PermissionGrant) PermissionGrant {
	if o.Enabled != nil {
		g.Enabled = *o.Enabled
	}
	if o.Create != nil {
		g.Create = *o.Create
	}
	if o.Read != nil {
		g.Read = *o.Read
	}
	if o.Update != nil {
		g.Update = *o.Update
	}
	if o.Delete != nil {
		g.Delete = *o.Delete
	}
	return g
}

// Overrides maps modules to a user's sparse overrides
type Overrides map[Module]GrantOverride

func full(m Module) PermissionGrant {
	return PermissionGrant{Module: m, Enabled: true, Create: true, Read: true, Update: true, Delete: true}
}

func noDelete(m Module) PermissionGrant {
	return PermissionGrant{Module: m, Enabled: true, Create: true, Read: true, Update: true}
}

func readOnly(m Module) PermissionGrant {
	return PermissionGrant{Module: m, Enabled: true, Read: true}
}

func allFull() map[Module]PermissionGrant {
	grants := make(map[Module]PermissionGrant, len(AllModules))
	for _, m := range AllModules {
		grants[m] = full(m)
	}
	return grants
}

// DefaultPresets returns the static role presets. Modules missing from a role's
// map are disabled.
func DefaultPresets() map[Role]map[Module]PermissionGrant {
	return map[Role]map[Module]PermissionGrant{
		RoleAdmin:      allFull(),
		RoleMaintainer: allFull(),
		RoleStaff: {
			ModuleRooms:        noDelete(ModuleRooms),
			ModuleOrders:       noDelete(ModuleOrders),
			ModuleDashboard:    readOnly(ModuleDashboard),
			ModuleFinancialHub: readOnly(ModuleFinancialHub),
		},
		RolePartner: {
			ModuleSupplyChain:  full(ModuleSupplyChain),
			ModuleImages:       full(ModuleImages),
			ModuleDashboard:    readOnly(ModuleDashboard),
			ModuleOrders:       readOnly(ModuleOrders),
			ModuleFinancialHub: readOnly(ModuleFinancialHub),
		},
	}
}

// Matrix maps role to module to grant. It is immutable after construction and
// safe for concurrent reads.
type Matrix struct {
	presets map[Role]map[Module]PermissionGrant
}

// NewMatrix builds a matrix from presets, copying them so later changes to the
// argument have no effect.
func NewMatrix(presets map[Role]map[Module]PermissionGrant) *Matrix {
	copied := make(map[Role]map[Module]PermissionGrant, len(presets))
	for role, grants := range presets {
		inner := make(map[Module]PermissionGrant, len(grants))
		for m, g := range grants {
			g.Module = m
			inner[m] = g
		}
		copied[role] = inner
	}
	return &Matrix{presets: copied}
}

// NewDefaultMatrix builds the matrix from the static role presets
func NewDefaultMatrix() *Matrix {
	return NewMatrix(DefaultPresets())
}

// Grant returns the effective grant for the principal at module, merging the
// principal's overrides. Unknown roles and modules yield a disabled grant.
func (m *Matrix) Grant(p Principal, module Module) PermissionGrant {
	if !module.IsValid() || !p.Role.IsValid() {
		return PermissionGrant{Module: module}
	}
	grant, ok := m.presets[p.Role][module]
	if !ok {
		grant = PermissionGrant{Module: module}
	}
	if o, ok := p.Overrides[module]; ok {
		grant = o.Apply(grant)
	}
	return grant.Normalized()
}

// Check reports whether the principal may perform action on module
func (m *Matrix) Check(p Principal, module Module, action Action) bool {
	return m.Grant(p, module).Allows(action)
}

// Require returns ErrPermissionDenied when Check fails
func (m *Matrix) Require(p Principal, module Module, action Action) error {
	if m.Check(p, module, action) {
		return nil
	}
	return shared.ErrPermissionDenied.
		WithDetail("module", string(module)).
		WithDetail("action", string(action)).
		WithDetail("role", string(p.Role))
}

// Grants returns the effective grant for every module, in AllModules order
func (m *Matrix) Grants(p Principal) []PermissionGrant {
	grants := make([]PermissionGrant, 0, len(AllModules))
	for _, module := range AllModules {
		grants = append(grants, m.Grant(p, module))
	}
	return grants
}
