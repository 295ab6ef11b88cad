package roles

// Capability tokens gating console areas. Stored on the profile as an
// ordered app-access list.
const (
	AppDashboard    = "dashboard"
	AppFormulas     = "formulas"
	AppSuppliers    = "suppliers"
	AppRawMaterials = "raw-materials"
	AppUsers        = "users"
	AppCompanies    = "companies"
	AppReports      = "reports"
)

var (
	globalAdminAccess = []string{
		AppDashboard, AppFormulas, AppSuppliers, AppRawMaterials,
		AppUsers, AppCompanies, AppReports,
	}
	companyAdminAccess = []string{
		AppDashboard, AppFormulas, AppSuppliers, AppRawMaterials, AppUsers,
	}
	employeeAccess = []string{
		AppDashboard, AppFormulas,
	}
)

// DefaultAppAccess returns the default capability list for a role string.
// Pure: same role in, same list out. Unknown roles get the employee set.
func DefaultAppAccess(role string) []string {
	switch Classify(role).Class {
	case ClassGlobalAdmin:
		return cloned(globalAdminAccess)
	case ClassCompanyAdmin:
		return cloned(companyAdminAccess)
	default:
		return cloned(employeeAccess)
	}
}

// CanEdit is the coarse role-level allow/deny: global admins edit anyone,
// company admins edit anyone except global admins, employees edit no one.
// Per-record ownership checks belong to the caller.
func CanEdit(actorRole, targetRole string) bool {
	switch Classify(actorRole).Class {
	case ClassGlobalAdmin:
		return true
	case ClassCompanyAdmin:
		return !Classify(targetRole).IsGlobalAdmin()
	default:
		return false
	}
}

func cloned(set []string) []string {
	out := make([]string, len(set))
	copy(out, set)
	return out
}
