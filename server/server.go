package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/infonow-server/auth"
	"github.com/jrsteele09/infonow-server/internal/config"
	"github.com/jrsteele09/infonow-server/token"
	"github.com/jrsteele09/infonow-server/topics"
	"github.com/jrsteele09/infonow-server/users"
	"github.com/rs/zerolog/log"
)

// Config is the part of the process configuration the HTTP layer reads.
type Config interface {
	GetEnv() string
	IsProduction() bool
	GetAPIPrefix() string
	GetAllowedOrigins() config.AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

// AccessTokenVerifier checks the access-token cookie. *token.Manager satisfies it.
type AccessTokenVerifier interface {
	VerifyAccessToken(rawToken string) (token.Payload, error)
}

// Repos holds the repositories the handlers read and write directly
type Repos struct {
	Users  users.Repo
	Topics topics.Repo
}

// HealthCheck is a named dependency probe for /healthy.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  Config
	auth    *auth.Service
	tokens  AccessTokenVerifier
	repos   Repos
	health  []HealthCheck
	metrics *Metrics
}

type Option func(*Server)

func WithHealthCheck(name string, check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.health = append(s.health, HealthCheck{Name: name, Check: check})
	}
}

// WithMetrics replaces the default metrics, mainly so tests get a fresh registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(cfg Config, authService *auth.Service, tokens AccessTokenVerifier, repos Repos, opts ...Option) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if tokens == nil {
		return nil, errors.New("[Server New] access token verifier is required")
	}
	if repos.Users == nil || repos.Topics == nil {
		return nil, errors.New("[Server New] users and topics repos are required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		tokens: tokens,
		repos:  repos,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

// apiPath mounts a route below the API prefix.
func (s *Server) apiPath(route string) string {
	prefix := s.config.GetAPIPrefix()
	if prefix == "" {
		return route
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix + route
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDevelopment {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}
