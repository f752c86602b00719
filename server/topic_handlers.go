package server

import (
	"net/http"

	"github.com/jrsteele09/infonow-server/internal/utils"
	"github.com/jrsteele09/infonow-server/topics"
)

type topicsResponse struct {
	Topics []topics.Topic `json:"topics"`
}

type subTopicsResponse struct {
	SubTopics []topics.SubTopic `json:"subtopics"`
}

type userTopicsRequest struct {
	TopicIDs []int `json:"topicIds"`
}

type userSubTopicsRequest struct {
	SubTopicIDs []int `json:"subTopicIds"`
}

// batchCount mirrors the {count} summary of a bulk insert.
type batchCount struct {
	Count int `json:"count"`
}

type userTopicsResponse struct {
	Message    string     `json:"message"`
	UserTopics batchCount `json:"userTopics"`
}

type userSubTopicsResponse struct {
	Message       string     `json:"message"`
	UserSubTopics batchCount `json:"userSubTopics"`
}

type preferencesResponse struct {
	Topics    []topics.Topic    `json:"topics"`
	SubTopics []topics.SubTopic `json:"subtopics"`
}

func (s *Server) AllTopicsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.repos.Topics.ListAll(r.Context())
		if err != nil {
			writeError(w, r, err, "Failed to fetch topics")
			return
		}
		writeJSON(w, http.StatusOK, topicsResponse{Topics: utils.NonNil(all)})
	}
}

func (s *Server) SubTopicsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic, err := s.repos.Topics.GetBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			message := "Failed to fetch subtopics"
			if statusForError(err) == http.StatusNotFound {
				message = "Topic not found"
			}
			writeError(w, r, err, message)
			return
		}
		writeJSON(w, http.StatusOK, subTopicsResponse{SubTopics: utils.NonNil(topic.SubTopics)})
	}
}

// UserTopicsHandler replaces the session user's topic selection.
func (s *Server) UserTopicsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		var req userTopicsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "Invalid request body")
			return
		}
		ids, err := topics.NormalizeIDs(req.TopicIDs)
		if err != nil {
			writeError(w, r, err, "Invalid topic ids")
			return
		}

		n, err := s.repos.Topics.ReplaceUserTopics(r.Context(), session.UserID, ids)
		if err != nil {
			writeError(w, r, err, updateErrorMessage(err, "Invalid topic ids", "Failed to update topics"))
			return
		}
		writeJSON(w, http.StatusOK, userTopicsResponse{Message: "Topics updated", UserTopics: batchCount{Count: n}})
	}
}

// UserSubTopicsHandler replaces the session user's subtopic selection.
func (s *Server) UserSubTopicsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		var req userSubTopicsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, "Invalid request body")
			return
		}
		ids, err := topics.NormalizeIDs(req.SubTopicIDs)
		if err != nil {
			writeError(w, r, err, "Invalid subtopic ids")
			return
		}

		n, err := s.repos.Topics.ReplaceUserSubTopics(r.Context(), session.UserID, ids)
		if err != nil {
			writeError(w, r, err, updateErrorMessage(err, "Invalid subtopic ids", "Failed to update subtopics"))
			return
		}
		writeJSON(w, http.StatusOK, userSubTopicsResponse{Message: "Subtopics updated", UserSubTopics: batchCount{Count: n}})
	}
}

func (s *Server) UserPreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Unauthorized")
			return
		}

		prefs, err := s.repos.Topics.UserPreferences(r.Context(), session.UserID)
		if err != nil {
			writeError(w, r, err, "Failed to fetch preferences")
			return
		}
		writeJSON(w, http.StatusOK, preferencesResponse{
			Topics:    utils.NonNil(prefs.Topics),
			SubTopics: utils.NonNil(prefs.SubTopics),
		})
	}
}

func updateErrorMessage(err error, badRequest, fallback string) string {
	if statusForError(err) == http.StatusBadRequest {
		return badRequest
	}
	return fallback
}
