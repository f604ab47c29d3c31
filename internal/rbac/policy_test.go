package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

func TestDefaultPolicyElevatedRoles(t *testing.T) {
	p := DefaultPolicy()
	for _, role := range []roles.Role{roles.Admin, roles.Proprietor} {
		for _, action := range shared.OfficeScopes() {
			assert.True(t, p.Permit(role, action), "%s should hold %s", role, action)
		}
	}
}

func TestDefaultPolicyStaff(t *testing.T) {
	p := DefaultPolicy()
	allowed := []string{
		shared.PermStaffView,
		shared.PermProductsView,
		shared.PermTasksView,
		shared.PermTasksWrite,
		shared.PermLeavesRequest,
		shared.PermExpensesSubmit,
		shared.PermAttendanceSelf,
		shared.PermDashboardView,
	}
	denied := []string{
		shared.PermStaffWrite,
		shared.PermStaffDelete,
		shared.PermClientsView,
		shared.PermClientsWrite,
		shared.PermClientsDelete,
		shared.PermProductsWrite,
		shared.PermLeavesApprove,
		shared.PermExpensesApprove,
		shared.PermAttendanceViewAll,
		shared.PermJobsView,
		shared.PermAuditView,
	}
	for _, a := range allowed {
		assert.True(t, p.Permit(roles.Staff, a), a)
	}
	for _, a := range denied {
		assert.False(t, p.Permit(roles.Staff, a), a)
	}
}

func TestPermitIsCaseInsensitiveOnRole(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.Permit(roles.Role("ADMIN"), shared.PermClientsDelete))
	assert.True(t, p.Permit(roles.Role("Proprietor"), shared.PermLeavesApprove))
}

func TestUnknownRoleIsStaff(t *testing.T) {
	p := DefaultPolicy()
	assert.False(t, p.Permit(roles.Role("superuser"), shared.PermClientsView))
	assert.True(t, p.Permit(roles.Role("superuser"), shared.PermTasksView))
	assert.Equal(t, p.EffectivePermissions(roles.Staff), p.EffectivePermissions(roles.Role("intern")))
}

func TestUnknownActionDenied(t *testing.T) {
	assert.False(t, DefaultPolicy().Permit(roles.Admin, "payroll.run"))
	assert.False(t, Policy{}.Permit(roles.Admin, shared.PermStaffView))
}

func TestAuthorize(t *testing.T) {
	p := DefaultPolicy()
	assert.ErrorIs(t, p.Authorize(shared.Principal{}, shared.PermStaffView), shared.ErrUnauthenticated)
	assert.ErrorIs(t, p.Authorize(shared.Principal{UserID: 2, Role: roles.Staff}, shared.PermLeavesApprove), shared.ErrForbidden)
	assert.NoError(t, p.Authorize(shared.Principal{UserID: 1, Role: roles.Proprietor}, shared.PermLeavesApprove))
}
