package models

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RoleCustomer:
		return true
	default:
		return false
	}
}

// Provisionable reports whether an account of this role can be created from a contact request.
func (r Role) Provisionable() bool {
	return r == RoleDriver || r == RoleCustomer
}

func (r Role) String() string {
	return string(r)
}
