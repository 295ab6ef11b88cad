package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		class   Class
		company string
	}{
		{"global admin sentinel", "Global Admin", ClassGlobalAdmin, ""},
		{"employee", "Employee", ClassEmployee, ""},
		{"company admin", "Synthos Admin", ClassCompanyAdmin, "Synthos"},
		{"multi word company admin", "Acme Coatings Admin", ClassCompanyAdmin, "Acme Coatings"},
		{"bare Admin suffix without company", " Admin", ClassEmployee, ""},
		{"unknown string", "Lab Technician", ClassEmployee, ""},
		{"empty string", "", ClassEmployee, ""},
		{"whitespace", "   ", ClassEmployee, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.role)
			assert.Equal(t, tt.class, r.Class)
			assert.Equal(t, tt.company, r.Company)
		})
	}
}

func TestClassify_PreservesRawForDisplay(t *testing.T) {
	r := Classify("Lab Technician")
	assert.True(t, r.IsEmployee())
	assert.Equal(t, "Lab Technician", r.String())

	assert.Equal(t, "Employee", Role{}.String())
}

func TestClassify_SentinelIsNotCompanyAdmin(t *testing.T) {
	// "Global Admin" matches the "<text> Admin" pattern but must classify
	// as global admin, not as admin of a company named "Global".
	r := Classify("Global Admin")
	assert.True(t, r.IsGlobalAdmin())
	assert.False(t, r.IsCompanyAdmin())
	assert.Empty(t, r.Company)
}

func TestCompanyNameRoundTrip(t *testing.T) {
	// Interior whitespace in the company text survives the round trip: the
	// extracted name is used verbatim when composing the role back.
	for _, role := range []string{"Synthos Admin", "Polychem Admin", "Acme Coatings Admin", "Acme  Admin"} {
		name, ok := CompanyNameFromAdminRole(role)
		require.True(t, ok, role)
		assert.Equal(t, role, AdminRoleForCompany(name))
	}
}

func TestCompanyNameFromAdminRole_NonAdmin(t *testing.T) {
	_, ok := CompanyNameFromAdminRole("Employee")
	assert.False(t, ok)
	_, ok = CompanyNameFromAdminRole("Global Admin")
	assert.False(t, ok)
}

func TestAdminRoleFromDomain_SeedTable(t *testing.T) {
	role, ok := AdminRoleFromDomain("synthos.io", nil)
	require.True(t, ok)
	assert.Equal(t, "Synthos Admin", role)

	role, ok = AdminRoleFromDomain("chemconsole.io", nil)
	require.True(t, ok)
	assert.Equal(t, RoleGlobalAdmin, role)
}

func TestAdminRoleFromDomain_CompanyWebsites(t *testing.T) {
	companies := []Company{
		{Name: "Acme Coatings", Website: "https://www.acme-coatings.com/"},
		{Name: "Baltic Resins", Website: "balticresins.eu"},
	}

	role, ok := AdminRoleFromDomain("acme-coatings.com", companies)
	require.True(t, ok)
	assert.Equal(t, "Acme Coatings Admin", role)

	role, ok = AdminRoleFromDomain("balticresins.eu", companies)
	require.True(t, ok)
	assert.Equal(t, "Baltic Resins Admin", role)
}

func TestAdminRoleFromDomain_InventedFallback(t *testing.T) {
	// Deterministic on repeated calls, pure function of its inputs.
	for i := 0; i < 3; i++ {
		role, ok := AdminRoleFromDomain("unknown-domain.io", []Company{})
		require.True(t, ok)
		assert.Equal(t, "Unknown-domain Admin", role)
	}
}

func TestAdminRoleFromDomain_EmptyDomain(t *testing.T) {
	_, ok := AdminRoleFromDomain("", nil)
	assert.False(t, ok)
	_, ok = AdminRoleFromDomain("   ", nil)
	assert.False(t, ok)
}

func TestGlobalAdminDomain(t *testing.T) {
	assert.True(t, GlobalAdminDomain("chemconsole.io"))
	assert.False(t, GlobalAdminDomain("synthos.io"))
	assert.False(t, GlobalAdminDomain("example.com"))
}

func TestDefaultAppAccess(t *testing.T) {
	assert.Equal(t, []string{
		AppDashboard, AppFormulas, AppSuppliers, AppRawMaterials,
		AppUsers, AppCompanies, AppReports,
	}, DefaultAppAccess(RoleGlobalAdmin))

	assert.Equal(t, []string{
		AppDashboard, AppFormulas, AppSuppliers, AppRawMaterials, AppUsers,
	}, DefaultAppAccess("Synthos Admin"))

	assert.Equal(t, []string{AppDashboard, AppFormulas}, DefaultAppAccess(RoleEmployee))
	assert.Equal(t, []string{AppDashboard, AppFormulas}, DefaultAppAccess("whatever"))
	assert.Equal(t, []string{AppDashboard, AppFormulas}, DefaultAppAccess(""))
}

func TestDefaultAppAccess_PureAndIsolated(t *testing.T) {
	first := DefaultAppAccess(RoleGlobalAdmin)
	first[0] = "mutated"
	second := DefaultAppAccess(RoleGlobalAdmin)
	assert.Equal(t, AppDashboard, second[0])
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		actor, target string
		want          bool
	}{
		{RoleGlobalAdmin, RoleGlobalAdmin, true},
		{RoleGlobalAdmin, "Synthos Admin", true},
		{RoleGlobalAdmin, RoleEmployee, true},
		{"Synthos Admin", RoleGlobalAdmin, false},
		{"Synthos Admin", "Polychem Admin", true},
		{"Synthos Admin", RoleEmployee, true},
		{RoleEmployee, RoleEmployee, false},
		{RoleEmployee, "Synthos Admin", false},
		{"", RoleEmployee, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanEdit(tt.actor, tt.target), "%s -> %s", tt.actor, tt.target)
	}
}
