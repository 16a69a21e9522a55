package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	if s.jwks != nil {
		s.RegisterRouteHandler("GET "+RouteWellKnownJWKS, ChainMiddleware(s.JWKSHandler(), s.APIMiddleware()...))
	}

	for _, prefix := range []string{"", LegacyPrefix} {
		s.initMobileRoutes(prefix)
	}

	// Admin console, bearer token plus manager role
	s.RegisterRouteHandler("GET "+RouteAdminStats, ChainMiddleware(s.AdminStatsHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminEmployees, ChainMiddleware(s.AdminEmployeesHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminEmployees, ChainMiddleware(s.AdminSaveEmployeeHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAdminEmployee, ChainMiddleware(s.AdminDeleteEmployeeHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminEmployeeAttendance, ChainMiddleware(s.AdminEmployeeAttendanceHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminAttendance, ChainMiddleware(s.AdminAttendanceHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminLeaves, ChainMiddleware(s.AdminLeavesHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminLeaveApprove, ChainMiddleware(s.AdminResolveLeaveHandler(true), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminLeaveReject, ChainMiddleware(s.AdminResolveLeaveHandler(false), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminTasks, ChainMiddleware(s.AdminCreateTaskHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminSalary, ChainMiddleware(s.AdminCreateSalaryHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminSalaryPaid, ChainMiddleware(s.AdminSalaryPaidHandler(), s.AdminMiddleware()...))

	// Unmatched paths, and preflight requests which CorsMiddleware answers
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
}

func (s *Server) initMobileRoutes(prefix string) {
	s.RegisterRouteHandler("POST "+prefix+RouteMobileLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+prefix+RouteMobileLogout, ChainMiddleware(s.LogoutHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("POST "+prefix+RouteMobileCheckIn, ChainMiddleware(s.CheckInHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("POST "+prefix+RouteMobileCheckOut, ChainMiddleware(s.CheckOutHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("GET "+prefix+RouteMobileTasks, ChainMiddleware(s.TasksHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("POST "+prefix+RouteMobileTaskUpdate, ChainMiddleware(s.UpdateTaskHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("POST "+prefix+RouteMobileLeaveApply, ChainMiddleware(s.ApplyLeaveHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("GET "+prefix+RouteMobileLeaveHistory, ChainMiddleware(s.LeaveHistoryHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("GET "+prefix+RouteMobileSalary, ChainMiddleware(s.SalaryHandler(), s.AuthMiddleware()...))
	s.RegisterRouteHandler("GET "+prefix+RouteMobileProfile, ChainMiddleware(s.ProfileHandler(), s.AuthMiddleware()...))
}

// NotFoundHandler answers unmatched paths with the standard envelope.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "Route not found")
	}
}

// JWKSHandler publishes the token verification key. The body is a bare key
// set so standard JWKS clients can read it.
func (s *Server) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(s.jwks)
	}
}
