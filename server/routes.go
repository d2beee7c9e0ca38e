package server

import "github.com/campushub/portal-auth/identity"

const (
	LoginRoute   = "POST /api/login"
	RefreshRoute = "POST /api/refresh"
	LogoutRoute  = "POST /api/logout"
	MeRoute      = "GET /api/me"
	AdminRoute   = "GET /api/admin/ping"
)

func (s *Server) initRoutes() {
	api := s.APIMiddleware()

	s.RegisterRouteFunc(LoginRoute, ChainMiddleware(s.LoginHandler(), api...))
	s.RegisterRouteFunc(RefreshRoute, ChainMiddleware(s.RefreshHandler(), api...))
	s.RegisterRouteFunc(LogoutRoute, ChainMiddleware(s.LogoutHandler(), api...))

	authenticated := append(api, s.AuthMiddleware)
	s.RegisterRouteFunc(MeRoute, ChainMiddleware(s.MeHandler(), authenticated...))
	s.RegisterRouteFunc(AdminRoute, ChainMiddleware(s.PingHandler(),
		append(authenticated, RequireRole(identity.RoleAdmin, identity.RoleStaff))...))
}
