package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/poketrainer/trainer-api/auth"
	"github.com/poketrainer/trainer-api/internal/config"
	"github.com/poketrainer/trainer-api/server"
	"github.com/poketrainer/trainer-api/token"
	"github.com/poketrainer/trainer-api/trainers/postgres"
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
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	db, err := openDatabase(ctx, c.GetDatabaseDSN())
	if err != nil {
		return errors.Wrap(err, "openDatabase")
	}
	defer func() { _ = db.Close() }()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return errors.Wrap(err, "postgres.RunMigrations")
	}

	repo := postgres.NewRepo(db)

	issuer, err := token.NewIssuer(
		c.GetAccessSecret(),
		c.GetRefreshSecret(),
		token.WithExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
	)
	if err != nil {
		return errors.Wrap(err, "token.NewIssuer")
	}

	sessions, err := auth.NewSessionService(repo, issuer)
	if err != nil {
		return errors.Wrap(err, "auth.NewSessionService")
	}

	httpServer := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, sessions, repo, issuer),
	}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

// openDatabase dials PostgreSQL with exponential backoff so a slow-starting
// database does not kill the server at boot. The retry lives here, not in
// the core: by the time any session operation runs, the store is reachable.
func openDatabase(ctx context.Context, dsn string) (db *sql.DB, err error) {
	backoff := retry.WithMaxRetries(5, retry.NewExponential(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var openErr error
		db, openErr = postgres.Open(ctx, dsn)
		if openErr != nil {
			log.Warn().Err(openErr).Msg("database not ready, retrying")
			return retry.RetryableError(openErr)
		}
		return nil
	})
	return db, err
}

func setupLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
