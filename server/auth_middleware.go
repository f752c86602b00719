package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/infonow-server/token"
	"github.com/rs/zerolog/log"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the payload attached by RequireSession.
func SessionFromContext(ctx context.Context) (token.Payload, bool) {
	p, ok := ctx.Value(sessionContextKey).(token.Payload)
	return p, ok
}

func withSession(ctx context.Context, p token.Payload) context.Context {
	return context.WithValue(ctx, sessionContextKey, p)
}

// RequireSession admits requests carrying a valid access-token cookie. It
// never refreshes; an expired access token is a 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := cookieValue(r, AccessTokenCookie)
		if raw == "" {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		payload, err := s.tokens.VerifyAccessToken(raw)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected access token")
			writeUnauthorized(w, "Invalid token")
			return
		}

		next(w, r.WithContext(withSession(r.Context(), payload)))
	}
}
