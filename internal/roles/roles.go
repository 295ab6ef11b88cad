// Package roles classifies role strings and derives default permissions.
// All functions are pure: no storage, no network, no panics. Invalid input
// degrades to the most restrictive classification (employee, empty access).
package roles

import (
	"net/url"
	"strings"
)

const (
	// RoleEmployee is the fixed default role string.
	RoleEmployee = "Employee"

	// RoleGlobalAdmin is the fixed platform-admin sentinel. It matches the
	// "<text> Admin" pattern, so the classifier must check it before the
	// company-admin family.
	RoleGlobalAdmin = "Global Admin"

	adminSuffix = " Admin"
)

// Class is the classification of a role string.
type Class int

const (
	ClassEmployee Class = iota
	ClassCompanyAdmin
	ClassGlobalAdmin
)

func (c Class) String() string {
	switch c {
	case ClassGlobalAdmin:
		return "global_admin"
	case ClassCompanyAdmin:
		return "company_admin"
	default:
		return "employee"
	}
}

// Role is a classified role. Raw preserves the original string for display;
// company-admin roles carry the derived company name. Construct via Classify,
// never by comparing raw strings ad hoc.
type Role struct {
	Class   Class
	Raw     string
	Company string
}

func (r Role) IsGlobalAdmin() bool  { return r.Class == ClassGlobalAdmin }
func (r Role) IsCompanyAdmin() bool { return r.Class == ClassCompanyAdmin }
func (r Role) IsEmployee() bool     { return r.Class == ClassEmployee }

// String returns the raw role string, falling back to the employee role for
// empty input so a Role is always displayable.
func (r Role) String() string {
	if r.Raw == "" {
		return RoleEmployee
	}
	return r.Raw
}

// Classify turns a raw role string into a Role. Unknown strings classify as
// employee but keep the original string for display. Total: never panics.
func Classify(role string) Role {
	trimmed := strings.TrimSpace(role)
	switch {
	case trimmed == RoleGlobalAdmin:
		return Role{Class: ClassGlobalAdmin, Raw: trimmed}
	case isCompanyAdminRole(trimmed):
		return Role{
			Class:   ClassCompanyAdmin,
			Raw:     trimmed,
			Company: strings.TrimSuffix(trimmed, adminSuffix),
		}
	case trimmed == RoleEmployee:
		return Role{Class: ClassEmployee, Raw: trimmed}
	default:
		return Role{Class: ClassEmployee, Raw: role}
	}
}

// isCompanyAdminRole reports whether role matches "<text> Admin" with
// non-empty text. The global-admin sentinel is excluded by Classify's
// case ordering.
func isCompanyAdminRole(role string) bool {
	if !strings.HasSuffix(role, adminSuffix) {
		return false
	}
	return strings.TrimSpace(strings.TrimSuffix(role, adminSuffix)) != ""
}

// CompanyNameFromAdminRole strips the trailing " Admin" suffix. Returns
// ("", false) when role is not a company-admin role.
func CompanyNameFromAdminRole(role string) (string, bool) {
	r := Classify(role)
	if !r.IsCompanyAdmin() {
		return "", false
	}
	return r.Company, true
}

// AdminRoleForCompany composes the admin role string for a company. The name
// is used verbatim so composing with CompanyNameFromAdminRole round-trips
// exactly; callers holding untrusted names trim before calling.
func AdminRoleForCompany(companyName string) string {
	return companyName + adminSuffix
}

// seedDomainRoles is the static domain to role lookup table. The platform
// domain maps to the global-admin sentinel; customer domains seed their
// company-admin roles.
var seedDomainRoles = map[string]string{
	"chemconsole.io": RoleGlobalAdmin,
	"synthos.io":     "Synthos Admin",
	"polychem.com":   "Polychem Admin",
	"novachem.de":    "Novachem Admin",
}

// Company is the slice of company data the taxonomy needs for domain
// matching. Website may be a bare hostname or a full URL.
type Company struct {
	Name    string
	Website string
}

// AdminRoleFromDomain derives an admin role for an email domain.
// Resolution order: the static seed table, then the known companies' website
// hostnames, then a deterministic fallback composing "<Label> Admin" from the
// capitalized first label of the domain. Returns ("", false) only for empty
// domains.
func AdminRoleFromDomain(domain string, knownCompanies []Company) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" {
		return "", false
	}

	if role, ok := seedDomainRoles[d]; ok {
		return role, true
	}

	for _, c := range knownCompanies {
		if name := strings.TrimSpace(c.Name); name != "" && hostnameMatches(d, c.Website) {
			return AdminRoleForCompany(name), true
		}
	}

	label := d
	if i := strings.IndexByte(label, '.'); i > 0 {
		label = label[:i]
	}
	if label == "" {
		return "", false
	}
	return AdminRoleForCompany(capitalize(label)), true
}

// GlobalAdminDomain reports whether the domain maps to the global-admin
// sentinel in the seed table. Only this mapping applies unconditionally
// during claim synthesis; company-admin escalation needs the "admin"
// local-part heuristic.
func GlobalAdminDomain(domain string) bool {
	role, ok := seedDomainRoles[strings.ToLower(strings.TrimSpace(domain))]
	return ok && role == RoleGlobalAdmin
}

func hostnameMatches(domain, website string) bool {
	w := strings.ToLower(strings.TrimSpace(website))
	if w == "" {
		return false
	}
	if strings.Contains(w, "://") {
		if u, err := url.Parse(w); err == nil && u.Hostname() != "" {
			w = u.Hostname()
		}
	}
	w = strings.TrimPrefix(w, "www.")
	w = strings.TrimSuffix(w, "/")
	return w == domain
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
