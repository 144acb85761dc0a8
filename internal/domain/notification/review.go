package notification

import "github.com/gridledger/billing/internal/domain/identity"

// reviewMatrix lists, per kind, the roles allowed to acknowledge a notice.
// It sits on top of the module gate: the caller also needs the
// notifications module.
var reviewMatrix = map[Kind]map[identity.Role]struct{}{
	KindPayment: {
		identity.RoleAdmin:   {},
		identity.RoleFinance: {},
	},
	KindReading: {
		identity.RoleAdmin:      {},
		identity.RoleElectrical: {},
	},
}

// CanReview reports whether role may mark notices of kind reviewed
func CanReview(role identity.Role, kind Kind) bool {
	roles, ok := reviewMatrix[kind]
	if !ok {
		return false
	}
	_, ok = roles[role]
	return ok
}
