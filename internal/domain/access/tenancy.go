package access

import "github.com/hostly/ordercore/internal/domain/shared"

// Operation is the kind of data access being guarded
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// Scope is the data filter derived for a principal. A restricted scope adds
// tenant_id = TenantID to every query and mutation.
type Scope struct {
	Restricted bool
	TenantID   string
}

// Unrestricted is the scope for roles that see the full dataset
var Unrestricted = Scope{}

// Permits reports whether a record owned by recordTenant falls inside the scope.
// House records (nil tenant) are outside every restricted scope.
func (s Scope) Permits(recordTenant *string) bool {
	if !s.Restricted {
		return true
	}
	return recordTenant != nil && *recordTenant == s.TenantID
}

// TenantPtr returns the scope's tenant as a pointer, nil when unrestricted
func (s Scope) TenantPtr() *string {
	if !s.Restricted {
		return nil
	}
	t := s.TenantID
	return &t
}

// Guard derives data scopes from principals. It holds no state.
type Guard struct{}

// NewGuard creates a tenancy guard
func NewGuard() *Guard {
	return &Guard{}
}

// Narrow returns the scope the operation must run under. Partners are narrowed
// to their own tenant; a partner without a tenant is refused outright.
func (g *Guard) Narrow(p Principal, op Operation) (Scope, error) {
	if !p.IsPartner() {
		return Unrestricted, nil
	}
	if !p.HasTenant() {
		return Scope{}, shared.ErrTenancyViolation.
			WithDetail("role", string(p.Role)).
			WithDetail("operation", string(op))
	}
	return Scope{Restricted: true, TenantID: p.TenantID}, nil
}

// Authorize narrows the principal and checks that a loaded record belongs to
// the resulting scope.
func (g *Guard) Authorize(p Principal, op Operation, recordTenant *string) error {
	scope, err := g.Narrow(p, op)
	if err != nil {
		return err
	}
	if !scope.Permits(recordTenant) {
		return shared.NewDomainError(shared.CodeTenancyViolation, "Record belongs to another tenant").
			WithDetail("role", string(p.Role)).
			WithDetail("operation", string(op))
	}
	return nil
}
