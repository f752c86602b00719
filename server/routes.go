package server

import "net/http"

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+s.apiPath(RouteAuthGoogleLogin), ChainMiddleware(s.GoogleLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+s.apiPath(RouteAuthGoogleCode), ChainMiddleware(s.GoogleCodeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+s.apiPath(RouteAuthRefresh), ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+s.apiPath(RouteAuthLogout), ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+s.apiPath(RouteAuthLogoutAll), ChainMiddleware(s.LogoutAllHandler(), s.APIMiddleware(s.RequireSession)...))

	// USER (session required)
	s.RegisterRouteHandler("GET "+s.apiPath(RouteUserMe), ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("PUT "+s.apiPath(RouteUserProfile), ChainMiddleware(s.UpdateProfileHandler(), s.APIMiddleware(s.RequireSession)...))

	// TOPICS (session required)
	s.RegisterRouteHandler("GET "+s.apiPath(RouteTopicsAll), ChainMiddleware(s.AllTopicsHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+s.apiPath(RouteTopicSubTopics), ChainMiddleware(s.SubTopicsHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+s.apiPath(RouteTopicsUserTopics), ChainMiddleware(s.UserTopicsHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+s.apiPath(RouteTopicsUserSubTopics), ChainMiddleware(s.UserSubTopicsHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+s.apiPath(RouteTopicsUserPreferences), ChainMiddleware(s.UserPreferencesHandler(), s.APIMiddleware(s.RequireSession)...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+s.apiPath("/{path...}"), ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	// Operational
	s.RegisterRouteHandler("GET "+RouteHealthy, ChainMiddleware(s.HealthHandler(), s.RequestIDMiddleware, s.RecoverMiddleware))
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
}
