package server

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

func (s *Server) sessionCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) setAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, s.sessionCookie(AccessTokenCookie, accessToken, s.config.GetAccessTokenExpiry()))
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, s.sessionCookie(RefreshTokenCookie, refreshToken, s.config.GetRefreshTokenExpiry()))
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := s.sessionCookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

// cookieValue returns "" when the cookie is absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
