package identity

// permissionKey is the (role, module) pair the access table is keyed by
type permissionKey struct {
	role   Role
	module Module
}

// rolePermissions lists the modules each role may read and write.
var rolePermissions = map[Role][]Module{
	RoleAdmin: {
		ModuleMeters,
		ModuleReadings,
		ModuleClients,
		ModuleContracts,
		ModuleTariffs,
		ModuleInvoices,
		ModulePayments,
		ModuleUsers,
		ModuleNotifications,
	},
	RoleElectrical: {
		ModuleMeters,
		ModuleReadings,
		ModuleNotifications,
	},
	RoleFinance: {
		ModuleClients,
		ModuleContracts,
		ModuleTariffs,
		ModuleInvoices,
		ModulePayments,
		ModuleNotifications,
	},
}

// permissionTable is built once at package init and never mutated afterwards.
var permissionTable = buildPermissionTable(rolePermissions)

func buildPermissionTable(src map[Role][]Module) map[permissionKey]struct{} {
	table := make(map[permissionKey]struct{})
	for role, modules := range src {
		for _, module := range modules {
			table[permissionKey{role: role, module: module}] = struct{}{}
		}
	}
	return table
}

// CanAccess reports whether role may operate on module.
// Unknown roles and unknown modules are denied.
func CanAccess(role Role, module Module) bool {
	_, ok := permissionTable[permissionKey{role: role, module: module}]
	return ok
}

// ModulesFor returns the modules accessible to role, in table order.
// The returned slice is a copy.
func ModulesFor(role Role) []Module {
	modules := rolePermissions[role]
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}
