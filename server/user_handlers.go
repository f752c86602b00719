package server

import (
	"net/http"

	"github.com/jrsteele09/infonow-server/internal/utils"
	"github.com/jrsteele09/infonow-server/topics"
	"github.com/jrsteele09/infonow-server/users"
)

// userWithSelections is the /user/me view: the user plus their raw
// topic and subtopic selections.
type userWithSelections struct {
	*users.User
	UserTopics    []topics.UserTopic    `json:"userTopics"`
	UserSubTopics []topics.UserSubTopic `json:"userSubTopics"`
}

type userResponse struct {
	User any `json:"user"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		user, err := s.repos.Users.GetByID(r.Context(), session.UserID)
		if err != nil {
			writeError(w, r, err, userErrorMessage(err, "Failed to fetch user"))
			return
		}

		userTopics, userSubTopics, err := s.repos.Topics.UserSelections(r.Context(), user.ID)
		if err != nil {
			writeError(w, r, err, "Failed to fetch user")
			return
		}

		writeJSON(w, http.StatusOK, userResponse{User: userWithSelections{
			User:          user,
			UserTopics:    utils.NonNil(userTopics),
			UserSubTopics: utils.NonNil(userSubTopics),
		}})
	}
}

// UpdateProfileHandler handles PUT /user/profile {name}.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		var req updateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "Invalid request body")
			return
		}

		name, err := users.NormalizeName(req.Name)
		if err != nil {
			writeError(w, r, err, "Name is required")
			return
		}

		user, err := s.repos.Users.UpdateName(r.Context(), session.UserID, name)
		if err != nil {
			writeError(w, r, err, userErrorMessage(err, "Failed to update profile"))
			return
		}
		writeJSON(w, http.StatusOK, userResponse{User: user})
	}
}

func userErrorMessage(err error, fallback string) string {
	if statusForError(err) == http.StatusNotFound {
		return "User not found"
	}
	return fallback
}
