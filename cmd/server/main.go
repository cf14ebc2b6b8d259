package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanmind-api/internal/auth"
	"kanmind-api/internal/config"
	"kanmind-api/internal/database"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/routes"
	"kanmind-api/internal/services"
	"kanmind-api/internal/throttle"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "kanmind-api:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("kanmind-api", pflag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(flags, os.LookupEnv)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init database
	db, err := database.InitDB(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	signer := auth.NewSigner(cfg.Auth.TokenSecret, cfg.Auth.TokenIssuer, cfg.Auth.TokenAudience, cfg.Auth.TokenTTL)
	tokens := auth.NewTokenService(db, signer)

	var limiter *throttle.Limiter
	if cfg.Throttle.AuthAttempts > 0 {
		limiter = throttle.New(cfg.Throttle.AuthAttempts, cfg.Throttle.Window)
		go purgeLoop(ctx, limiter, cfg.Throttle.Window, log)
	}

	// Setup the routes (public and protected routes)
	handler := routes.Handler(routes.Deps{
		Services:       services.New(db, tokens, log, cfg.Auth.BcryptCost),
		Tokens:         tokens,
		Log:            log,
		Ping:           func(ctx context.Context) error { return database.Ping(ctx, db) },
		AuthLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting",
			"addr", cfg.Server.Addr,
			"environment", cfg.Environment,
			"db_driver", cfg.Database.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// purgeLoop drops expired throttle windows until ctx is done.
func purgeLoop(ctx context.Context, l *throttle.Limiter, every time.Duration, log logging.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.PurgeExpired(); n > 0 {
				log.Debug(ctx, "throttle windows purged", "purged", n, "open", l.Len())
			}
		}
	}
}
