package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 3 * time.Second

type healthResponse struct {
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthHandler runs every registered probe. Any failure is a 503.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		resp := healthResponse{Message: "Server is healthy"}
		if len(s.health) > 0 {
			resp.Checks = make(map[string]string, len(s.health))
		}
		for _, hc := range s.health {
			if err := hc.Check(ctx); err != nil {
				log.Warn().Err(err).Str("check", hc.Name).Msg("Health check failed")
				resp.Checks[hc.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[hc.Name] = "ok"
		}
		if status != http.StatusOK {
			resp.Message = "Server is unhealthy"
		}
		writeJSON(w, status, resp)
	}
}
