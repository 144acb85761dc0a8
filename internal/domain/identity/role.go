package identity

import (
	"strings"

	"github.com/gridledger/billing/internal/domain/shared"
)

// Role is the operator role resolved at login
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleElectrical Role = "ELECTRICAL" // Field staff: meters and readings
	RoleFinance    Role = "FINANCE"    // Billing staff: contracts, invoices, payments
)

// AllRoles returns every known role in a stable order
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleElectrical, RoleFinance}
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a case-insensitive role name into a Role
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.IsValid() {
		names := make([]string, 0, len(AllRoles()))
		for _, known := range AllRoles() {
			names = append(names, known.String())
		}
		return "", shared.NewValidationError("role", "must be one of "+strings.Join(names, ", "))
	}
	return role, nil
}

// Module is a permission-scoped entity category
type Module string

const (
	ModuleMeters        Module = "meters"
	ModuleReadings      Module = "readings"
	ModuleClients       Module = "clients"
	ModuleContracts     Module = "contracts"
	ModuleTariffs       Module = "tariffs"
	ModuleInvoices      Module = "invoices"
	ModulePayments      Module = "payments"
	ModuleUsers         Module = "users"
	ModuleNotifications Module = "notifications"
)

// AllModules returns every known module
func AllModules() []Module {
	return []Module{
		ModuleMeters,
		ModuleReadings,
		ModuleClients,
		ModuleContracts,
		ModuleTariffs,
		ModuleInvoices,
		ModulePayments,
		ModuleUsers,
		ModuleNotifications,
	}
}

// IsValid reports whether the module is one of the known modules
func (m Module) IsValid() bool {
	for _, known := range AllModules() {
		if m == known {
			return true
		}
	}
	return false
}

// String returns the module name
func (m Module) String() string {
	return string(m)
}
