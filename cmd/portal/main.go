// Command policydesk-portal serves the PolicyDesk web portal.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/policydesk/internal/config"
	"github.com/and161185/policydesk/internal/crypto"
	"github.com/and161185/policydesk/internal/web"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, derives cookie keys and serves the portal until a signal arrives.
func main() {
	// Flags
	cfgPath := flag.String("config", "", "path to YAML config")
	envFile := flag.String("env-file", ".env", "optional .env file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	apiURL := flag.String("api", "", "backend API base URL (overrides config)")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		_, _ = os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Portal.Addr = *addr
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *dev {
		cfg.Log.Dev = true
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		_, _ = os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	fatal := exitOnError(logger, os.Exit)
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Portal.Addr),
		zap.String("api", cfg.API.BaseURL),
	)

	secret := []byte(cfg.Portal.CookieSecret)
	if len(secret) == 0 {
		// sessions will not survive a restart
		logger.Warn("no cookie secret configured (POLICYDESK_COOKIE_SECRET), using a random one")
		if secret, err = crypto.Rand(32); err != nil {
			fatal("random cookie secret", err)
		}
	}
	hashKey, blockKey, err := crypto.CookieKeys(secret)
	if err != nil {
		fatal("derive cookie keys", err)
	}

	srv, err := web.NewServer(web.Options{
		APIBase:    cfg.API.BaseURL,
		HTTPClient: &http.Client{},
		Sessions:   web.NewCookieSessions(hashKey, blockKey, cfg.Portal.SecureCookies),
		Logger:     logger,
		Timeout:    cfg.API.Timeout,
	})
	if err != nil {
		fatal("init portal", err)
	}

	hs := &http.Server{
		Addr:              cfg.Portal.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Portal.Addr))
		errCh <- hs.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("forced shutdown", zap.Error(err))
			_ = hs.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}

	logger.Info("shutdown complete")
}

// exitOnError logs err and flushes logger before calling exit, which skips deferred calls.
func exitOnError(logger *zap.Logger, exit func(int)) func(msg string, err error) {
	return func(msg string, err error) {
		logger.Error(msg, zap.Error(err))
		_ = logger.Sync()
		exit(1)
	}
}
