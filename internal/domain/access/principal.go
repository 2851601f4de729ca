package access

import (
	"strings"

	"github.com/hostly/ordercore/internal/domain/shared"
)

// Role is the coarse role of an acting principal
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
	RolePartner    Role = "partner"
	RoleMaintainer Role = "maintainer"
)

// AllRoles lists every known role
var AllRoles = []Role{RoleAdmin, RoleStaff, RolePartner, RoleMaintainer}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RolePartner, RoleMaintainer:
		return true
	}
	return false
}

// IsFrontOfHouse reports whether the role sees every incoming order
func (r Role) IsFrontOfHouse() bool {
	return r == RoleAdmin || r == RoleStaff
}

// ParseRole converts a string to a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "unknown role %q", s)
	}
	return r, nil
}

// Principal is the acting identity for an operation. It is supplied per call by
// the authentication layer and never persisted here.
type Principal struct {
	UserID      string
	Role        Role
	TenantID    string // set only for partners
	DisplayName string
	Overrides   Overrides
}

// HasTenant reports whether the principal carries a tenant identity
func (p Principal) HasTenant() bool {
	return strings.TrimSpace(p.TenantID) != ""
}

// IsPartner reports whether the principal acts for a concession partner
func (p Principal) IsPartner() bool {
	return p.Role == RolePartner
}
