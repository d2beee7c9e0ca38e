package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/campushub/portal-auth/credentials"
	"github.com/campushub/portal-auth/identity"
	"github.com/campushub/portal-auth/identity/inmemory"
	"github.com/campushub/portal-auth/identity/mongostore"
	"github.com/campushub/portal-auth/internal/config"
	"github.com/campushub/portal-auth/server"
	"github.com/campushub/portal-auth/session"
	"github.com/campushub/portal-auth/token"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if c.GetEnv() == "DEV" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	// Missing signing secrets abort startup; the service must never run in
	// a state where it would issue unverifiable tokens.
	issuer, err := token.NewIssuer(c.GetAccessTokenSecret(), c.GetRefreshTokenSecret())
	if err != nil {
		return fmt.Errorf("token.NewIssuer: %w", err)
	}

	store, cleanup, err := newIdentityStore(c, logger)
	if err != nil {
		return fmt.Errorf("newIdentityStore: %w", err)
	}
	defer cleanup()

	coordinator, err := session.NewCoordinator(
		credentials.NewStoreVerifier(store),
		issuer,
		store,
		session.WithAccessTokenTTL(c.GetAccessTokenTTL()),
		session.WithRefreshTokenTTL(c.GetRefreshTokenTTL()),
		session.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("session.NewCoordinator: %w", err)
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: server.New(c, coordinator)}
	go listenAndServe(srv)
	waitForStopSignal()
	return shutdown(srv)
}

// newIdentityStore selects the store backing: MongoDB when configured, a
// process-local store otherwise (development only).
func newIdentityStore(c config.Config, logger zerolog.Logger) (identity.Store, func(), error) {
	uri := c.GetMongoURI()
	if uri == "" {
		logger.Warn().Msg("MONGO_URI not set, using in-memory identity store")
		store := inmemory.New()
		if c.GetEnv() == "DEV" {
			seedDevIdentity(store, logger)
		}
		return store, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongostore.Connect(ctx, uri)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("database", c.GetMongoDatabase()).Msg("connected to MongoDB")

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	return mongostore.New(client.Database(c.GetMongoDatabase()), logger), cleanup, nil
}

// seedDevIdentity creates a throwaway admin so a fresh dev instance can log
// in immediately. The generated password is printed once.
func seedDevIdentity(store identity.Store, logger zerolog.Logger) {
	password := uuid.New().String()
	hash, err := identity.HashPassword(password)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to seed dev identity")
		return
	}

	admin := &identity.Identity{
		Username:     "admin",
		Name:         "Dev Administrator",
		Role:         identity.RoleAdmin,
		PasswordHash: hash,
	}
	if err := store.Upsert(context.Background(), admin); err != nil {
		logger.Warn().Err(err).Msg("failed to seed dev identity")
		return
	}

	logger.Info().Str("username", admin.Username).Str("password", password).
		Msg("seeded dev admin identity - save this password, it will not be displayed again")
}

func listenAndServe(srv *http.Server) {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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
