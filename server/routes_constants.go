package server

// Route path constants
// API routes are mounted below the configured prefix (default /api)
const (
	// Auth Routes
	RouteAuthGoogleLogin = "/auth/google-login"
	RouteAuthGoogleCode  = "/auth/google-code"
	RouteAuthRefresh     = "/auth/refresh"
	RouteAuthLogout      = "/auth/logout"
	RouteAuthLogoutAll   = "/auth/logout-all"

	// User Routes
	RouteUserMe      = "/user/me"
	RouteUserProfile = "/user/profile"

	// Topic Routes
	RouteTopicsAll             = "/topics/all-topics"
	RouteTopicSubTopics        = "/topics/{slug}/subtopics"
	RouteTopicsUserTopics      = "/topics/user-topics"
	RouteTopicsUserSubTopics   = "/topics/user-subtopics"
	RouteTopicsUserPreferences = "/topics/user-preferences"

	// Operational Routes (not prefixed)
	RouteHealthy = "/healthy"
	RouteMetrics = "/metrics"
)
