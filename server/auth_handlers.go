package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/infonow-server/auth"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/users"
	"github.com/rs/zerolog/log"
)

type googleLoginRequest struct {
	Data struct {
		Token string `json:"token"`
		Code  string `json:"code"`
	} `json:"data"`
}

type loginResponse struct {
	Message  string      `json:"message"`
	User     *users.User `json:"user"`
	Redirect string      `json:"redirect"`
}

type logoutAllResponse struct {
	Message string `json:"message"`
	Revoked int64  `json:"revoked"`
}

// GoogleLoginHandler handles POST /auth/google-login with {data:{token}}.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req googleLoginRequest
		if err := decodeJSON(w, r, &req); err != nil || req.Data.Token == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "No token found in the request"})
			return
		}

		result, err := s.auth.Login(r.Context(), req.Data.Token)
		s.metrics.authEvent("login", err)
		s.completeLogin(w, r, result, err)
	}
}

// GoogleCodeHandler handles POST /auth/google-code with {data:{code}}. It is
// a 404 unless a Google client secret is configured.
func (s *Server) GoogleCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.CodeLoginEnabled() {
			writeJSON(w, http.StatusNotFound, errorResponse{Message: "Code login is not enabled"})
			return
		}

		var req googleLoginRequest
		if err := decodeJSON(w, r, &req); err != nil || req.Data.Code == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "No code found in the request"})
			return
		}

		result, err := s.auth.LoginWithCode(r.Context(), req.Data.Code)
		s.metrics.authEvent("login_code", err)
		s.completeLogin(w, r, result, err)
	}
}

func (s *Server) completeLogin(w http.ResponseWriter, r *http.Request, result *auth.LoginResult, err error) {
	if err != nil {
		log.Warn().Err(err).Msg("Google login failed")
		writeError(w, r, err, "Authentication failed")
		return
	}

	s.setAccessCookie(w, result.AccessToken)
	s.setRefreshCookie(w, result.RefreshToken)
	writeJSON(w, http.StatusOK, loginResponse{
		Message:  result.Message,
		User:     result.User,
		Redirect: result.Redirect,
	})
}

// RefreshHandler handles POST /auth/refresh. Only the access cookie is reissued.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken, err := s.auth.Refresh(r.Context(), cookieValue(r, RefreshTokenCookie))
		s.metrics.authEvent("refresh", err)
		if err != nil {
			message := "Invalid refresh token"
			switch {
			case errors.Is(err, auth.RefreshTokenNotFoundErr):
				message = "Refresh token not found"
			case statusForError(err) >= http.StatusInternalServerError:
				message = "Token refresh failed"
			}
			writeError(w, r, err, message)
			return
		}

		s.setAccessCookie(w, accessToken)
		writeJSON(w, http.StatusOK, messageResponse{Message: "Token refreshed"})
	}
}

// LogoutHandler handles POST /auth/logout. Cookies are cleared even when
// revoking the refresh token fails.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.auth.Logout(r.Context(), cookieValue(r, RefreshTokenCookie))
		s.metrics.authEvent("logout", err)
		s.clearSessionCookies(w)
		if err != nil {
			writeError(w, r, err, "Logout failed")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
	}
}

// LogoutAllHandler handles POST /auth/logout-all for the session user.
func (s *Server) LogoutAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		n, err := s.auth.LogoutEverywhere(r.Context(), session.UserID)
		s.metrics.authEvent("logout_all", err)
		s.clearSessionCookies(w)
		if err != nil {
			writeError(w, r, apperrors.Wrapf(err, "[LogoutAllHandler]"), "Logout failed")
			return
		}
		writeJSON(w, http.StatusOK, logoutAllResponse{Message: "Logged out everywhere", Revoked: n})
	}
}
