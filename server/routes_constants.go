package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHealth        = "/health"
	RouteWellKnownJWKS = "/.well-known/jwks.json"

	// LegacyPrefix mounts the mobile routes where older app builds expect them
	LegacyPrefix = "/wp-json/ems/v1"

	// Mobile Routes
	RouteMobileLogin        = "/mobile/login"
	RouteMobileLogout       = "/mobile/logout"
	RouteMobileCheckIn      = "/mobile/attendance/checkin"
	RouteMobileCheckOut     = "/mobile/attendance/checkout"
	RouteMobileTasks        = "/mobile/tasks"
	RouteMobileTaskUpdate   = "/mobile/tasks/update"
	RouteMobileLeaveApply   = "/mobile/leaves/apply"
	RouteMobileLeaveHistory = "/mobile/leaves/history"
	RouteMobileSalary       = "/mobile/salary"
	RouteMobileProfile      = "/mobile/profile"

	// Admin Routes
	RouteAdminStats              = "/admin/dashboard/stats"
	RouteAdminEmployees          = "/admin/employees"
	RouteAdminEmployee           = "/admin/employees/{id}"
	RouteAdminEmployeeAttendance = "/admin/employees/{id}/attendance"
	RouteAdminAttendance         = "/admin/attendance"
	RouteAdminLeaves             = "/admin/leaves"
	RouteAdminLeaveApprove       = "/admin/leaves/{id}/approve"
	RouteAdminLeaveReject        = "/admin/leaves/{id}/reject"
	RouteAdminTasks              = "/admin/tasks"
	RouteAdminSalary             = "/admin/salary"
	RouteAdminSalaryPaid         = "/admin/salary/{id}/paid"
)
