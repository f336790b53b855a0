package serverrun

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternhq/tern/internal/auth"
	"github.com/ternhq/tern/internal/chatlog"
	cfgpkg "github.com/ternhq/tern/internal/config"
	httpserver "github.com/ternhq/tern/internal/server/http"
	"github.com/ternhq/tern/internal/stream"
	logpkg "github.com/ternhq/tern/pkg/log"
)

type Options struct {
	Config cfgpkg.Config
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so direct callers
	// get clean shutdown on interrupt too.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config

	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(logger)

	store := chatlog.NewStore()
	if cfg.Seed {
		chatlog.Seed(store)
	}

	engine := stream.NewEngine(store, logger.With(logpkg.Component("stream")), stream.Options{
		PollInterval: cfg.PollInterval(),
		SessionTTL:   cfg.StreamTimeout(),
		Buffer:       cfg.StreamBuffer,
	})

	tokens := auth.NewTokenStore()
	var gate auth.Gate = auth.AllowAll{}
	if cfg.RequireAuth {
		switch cfg.AuthMode {
		case cfgpkg.AuthModeVerify:
			gate = auth.ExpiryGate{Tokens: tokens}
		default:
			gate = auth.PresenceGate{}
		}
	}

	logger.Info("Starting tern server",
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Bool("require_auth", cfg.RequireAuth),
		logpkg.Str("auth_mode", cfg.AuthMode),
		logpkg.Dur("poll_interval", cfg.PollInterval()),
		logpkg.Dur("stream_timeout", cfg.StreamTimeout()),
		logpkg.Bool("seed", cfg.Seed),
	)

	srv := httpserver.New(store, engine, gate, tokens, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(sctx, cfg.HTTPAddr) }()

	select {
	case <-sctx.Done():
		srv.Close()
		return nil
	case err := <-errCh:
		return err
	}
}
