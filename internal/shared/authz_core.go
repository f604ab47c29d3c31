package shared

// Office permissions. Actions are checked by rbac.Policy.
const (
	PermStaffView   = "staff.view"
	PermStaffWrite  = "staff.write"
	PermStaffDelete = "staff.delete"

	PermClientsView   = "clients.view"
	PermClientsWrite  = "clients.write"
	PermClientsDelete = "clients.delete"

	PermProductsView  = "products.view"
	PermProductsWrite = "products.write"

	PermTasksView  = "tasks.view"
	PermTasksWrite = "tasks.write"

	PermLeavesRequest = "leaves.request"
	PermLeavesApprove = "leaves.approve"

	PermExpensesSubmit  = "expenses.submit"
	PermExpensesApprove = "expenses.approve"

	PermAttendanceSelf    = "attendance.self"
	PermAttendanceViewAll = "attendance.view_all"

	PermDashboardView = "dashboard.view"
	PermJobsView      = "jobs.view"
	PermAuditView     = "audit.view"
)

// OfficeScopes lists every permission known to the application.
func OfficeScopes() []string {
	return []string{
		PermStaffView, PermStaffWrite, PermStaffDelete,
		PermClientsView, PermClientsWrite, PermClientsDelete,
		PermProductsView, PermProductsWrite,
		PermTasksView, PermTasksWrite,
		PermLeavesRequest, PermLeavesApprove,
		PermExpensesSubmit, PermExpensesApprove,
		PermAttendanceSelf, PermAttendanceViewAll,
		PermDashboardView, PermJobsView, PermAuditView,
	}
}

// StaffScopes lists the permissions granted to non-elevated accounts.
func StaffScopes() []string {
	return []string{
		PermStaffView,
		PermProductsView,
		PermTasksView, PermTasksWrite,
		PermLeavesRequest,
		PermExpensesSubmit,
		PermAttendanceSelf,
		PermDashboardView,
	}
}
