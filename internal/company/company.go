// Package company carries the tenant context of a request: which company
// the caller acts for and what lifecycle state that company is in.
package company

// Company lifecycle statuses as stored in the registry.
const (
	StatusActive     = 2  // serving traffic
	StatusHibernated = 10 // unloaded after inactivity
	StatusRelocating = 40 // moving between worlds
	StatusDeleted    = 50 // removed
	StatusInvalid    = 99 // provisioning failed, stuck
)

// Tenant identifies the company a request acts for. It satisfies the
// tenant provider contract of the reference codecs.
type Tenant struct {
	companyID int64
	status    int
}

// NewTenant builds a tenant context. The status comes from the company
// registry at request admission time.
func NewTenant(companyID int64, status int) Tenant {
	return Tenant{companyID: companyID, status: status}
}

func (t Tenant) CompanyID() int64 { return t.companyID }

func (t Tenant) Status() int { return t.status }

// IsServed reports whether requests for this company may proceed at all.
func (t Tenant) IsServed() bool {
	return t.status == StatusActive || t.status == StatusHibernated
}

func (t Tenant) IsActive() bool { return t.status == StatusActive }

func (t Tenant) IsHibernated() bool { return t.status == StatusHibernated }
