package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/infonow-server/auth"
	"github.com/jrsteele09/infonow-server/identity"
	"github.com/jrsteele09/infonow-server/internal/config"
	"github.com/jrsteele09/infonow-server/internal/db"
	"github.com/jrsteele09/infonow-server/internal/logging"
	"github.com/jrsteele09/infonow-server/server"
	"github.com/jrsteele09/infonow-server/token"
	"github.com/jrsteele09/infonow-server/token/refresh"
	refreshrepopg "github.com/jrsteele09/infonow-server/token/refresh/repopg"
	"github.com/jrsteele09/infonow-server/topics"
	topicrepopg "github.com/jrsteele09/infonow-server/topics/repopg"
	"github.com/jrsteele09/infonow-server/topics/topiccache"
	userrepopg "github.com/jrsteele09/infonow-server/users/repopg"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	logging.Setup(c)
	displayAppname(c.GetAppName())
	if c.UsesDefaultSecrets() {
		log.Warn().Msg("Using built-in token secrets; set ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, c)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	handler, sweeperDone, err := newHandler(ctx, c, conn)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv) }()

	select {
	case returnError = <-serveErr:
	case <-ctx.Done():
		returnError = shutdown(srv)
	}

	// The sweeper uses conn, so it must finish before the deferred Close.
	stop()
	<-sweeperDone
	return returnError
}

// newHandler wires the repositories, session services and HTTP server. The
// returned channel is closed once the refresh-token sweeper has stopped.
func newHandler(ctx context.Context, c config.Config, conn *sql.DB) (http.Handler, <-chan struct{}, error) {
	var topicRepo topics.Repo = topicrepopg.New(conn)
	serverOpts := []server.Option{server.WithHealthCheck("postgres", db.Healthcheck(conn))}

	if c.GetRedisURL() != "" {
		redisOpts, err := redis.ParseURL(c.GetRedisURL())
		if err != nil {
			return nil, nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		cache := topiccache.New(topicRepo, redis.NewClient(redisOpts), c.GetTopicCacheTTL())
		// Migrations may have changed the catalog since it was cached.
		if err := cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to clear topic cache")
		}
		serverOpts = append(serverOpts, server.WithHealthCheck("redis", cache.Ping))
		topicRepo = cache
		log.Info().Dur("ttl", c.GetTopicCacheTTL()).Msg("Topic cache enabled")
	}

	tokens := token.NewManager(c)
	refreshStore := refresh.NewStore(refreshrepopg.New(conn), c)

	verifier := identity.NewGoogleVerifier(ctx, c.GetGoogleClientID())
	var authOpts []auth.ServiceOption
	if c.GetGoogleClientSecret() != "" {
		authOpts = append(authOpts, auth.WithCodeExchanger(identity.NewCodeExchanger(
			c.GetGoogleClientID(), c.GetGoogleClientSecret(), c.GetGoogleRedirectURL(), verifier)))
	}

	users := userrepopg.New(conn)
	authService, err := auth.NewService(auth.Repos{Users: users, RefreshTokens: refreshStore}, tokens, verifier, authOpts...)
	if err != nil {
		return nil, nil, err
	}
	srv, err := server.New(c, authService, tokens, server.Repos{Users: users, Topics: topicRepo}, serverOpts...)
	if err != nil {
		return nil, nil, err
	}
	return srv, refreshStore.StartSweeper(ctx, c.GetRefreshSweepInterval()), nil
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
