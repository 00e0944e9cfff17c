package service

import "marketapi/internal/model"

// Actor is the verified caller of an owner-scoped operation, taken from the
// session token at the boundary and passed explicitly into every façade call.
type Actor struct {
	ID    string
	Email string
	Role  model.Role
}

// IsSeller reports whether the actor holds the SELLER role.
func (a Actor) IsSeller() bool {
	return a.Role == model.RoleSeller
}
