package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/internal/config"
	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/server"
	"github.com/jrsteele09/go-ems-server/store"
	"github.com/jrsteele09/go-ems-server/store/pgstore"
	"github.com/jrsteele09/go-ems-server/store/sqlstore"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/jrsteele09/go-ems-server/users/oidcdir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	maxRestarts            = 5
	revocationCleanupEvery = 10 * time.Minute
)

func main() {
	c := config.Load()
	setupLogging(c)
	displayAppname(c.GetAppName())

	stop, release := notifyStop()
	defer release()

	for attempt := 1; ; attempt++ {
		err := run(c, stop)
		if err == nil {
			break
		}
		if attempt >= maxRestarts {
			log.Fatal().Err(err).Int("attempts", attempt).Msg("giving up")
		}
		log.Error().Err(err).Int("attempt", attempt).Msg("server stopped with error, restarting")
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config, stop <-chan os.Signal) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	directory, err := newDirectory(ctx, c, st)
	if err != nil {
		return err
	}

	tokens, jwks, err := newTokenService(ctx, c, directory)
	if err != nil {
		return err
	}

	engine, err := attendance.NewEngine(st.Attendance(),
		attendance.WithLocation(c.GetLocation()),
		attendance.WithSingleOpenCheckIn(c.GetSingleOpenCheckIn()),
		attendance.WithRejectRepeatCheckOut(c.GetRejectRepeatCheckOut()),
	)
	if err != nil {
		return fmt.Errorf("[run] attendance engine: %w", err)
	}

	handler, err := server.New(c, server.Deps{
		Store:     st,
		Directory: directory,
		Tokens:    tokens,
		Engine:    engine,
		JWKS:      jwks,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         c.GetPort(),
		Handler:      handler,
		ReadTimeout:  c.GetReadTimeout(),
		WriteTimeout: c.GetWriteTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func openStore(c config.Config) (store.Store, error) {
	switch c.GetStoreDriver() {
	case config.StoreDriverPostgres:
		db, err := pgstore.Open(c.GetPostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("[openStore] postgres: %w", err)
		}
		log.Info().Msg("using postgres store")
		return db, nil
	default:
		db, err := sqlstore.Open(c.GetSqlitePath())
		if err != nil {
			return nil, fmt.Errorf("[openStore] sqlite: %w", err)
		}
		log.Info().Str("path", c.GetSqlitePath()).Msg("using sqlite store")
		return db, nil
	}
}

func newDirectory(ctx context.Context, c config.Config, st store.Store) (users.Directory, error) {
	if c.GetDirectoryType() != config.DirectoryOIDC {
		return users.NewLocalDirectory(st.Users()), nil
	}
	d, err := oidcdir.New(ctx, st.Users(), oidcdir.Config{
		Issuer:       c.GetOIDCIssuer(),
		ClientID:     c.GetOIDCClientID(),
		ClientSecret: c.GetOIDCClientSecret(),
		Scopes:       c.GetOIDCScopes(),
	})
	if err != nil {
		return nil, fmt.Errorf("[newDirectory] oidc: %w", err)
	}
	log.Info().Str("issuer", c.GetOIDCIssuer()).Msg("using external identity provider")
	return d, nil
}

func newTokenService(ctx context.Context, c config.Config, directory users.Directory) (token.Service, *token.JWKS, error) {
	if c.GetTokenFormat() == config.TokenFormatLegacy {
		log.Warn().Msg("legacy session tokens are unsigned and never expire; anyone who knows an identity id can forge one")
		return token.NewLegacyCodec(directory), nil, nil
	}

	signer, jwks, err := newSigner(c)
	if err != nil {
		return nil, nil, err
	}
	manager := token.New(signer, directory,
		token.WithIssuer(c.GetTokenIssuer()),
		token.WithExpiry(c.GetTokenExpiry()),
	)
	go cleanupRevokedTokens(ctx, manager)
	return manager, jwks, nil
}

func newSigner(c config.Config) (token.Signer, *token.JWKS, error) {
	keyFile := c.GetTokenSigningKeyFile()
	if keyFile == "" {
		secret := c.GetTokenSecret()
		if secret == "" {
			return nil, nil, errors.New(errors.KindInternal, "TOKEN_SECRET is required outside DEV")
		}
		return token.NewHMACSigner(secret), nil, nil
	}

	pemData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("[newSigner] %w", err)
	}
	keyPair, err := token.LoadKeyPairFromPEM(c.GetTokenKeyID(), pemData)
	if err != nil {
		return nil, nil, err
	}
	signer := token.NewKeyPairSigner(keyPair)
	jwks, err := signer.JWKS()
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("alg", keyPair.Algorithm).Str("kid", keyPair.KeyID).Msg("signing tokens with key pair")
	return signer, jwks, nil
}

func cleanupRevokedTokens(ctx context.Context, manager *token.Manager) {
	ticker := time.NewTicker(revocationCleanupEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupRevokedTokens()
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// notifyStop registers for interrupt and SIGTERM once for the life of the
// process. release unregisters the channel.
func notifyStop() (<-chan os.Signal, func()) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop, func() { signal.Stop(stop) }
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
