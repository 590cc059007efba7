package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examcoach/internal/api"
	"github.com/abhisek/examcoach/internal/config"
	"github.com/abhisek/examcoach/internal/llm"
	"github.com/abhisek/examcoach/internal/logging"
	"github.com/abhisek/examcoach/internal/marking"
	"github.com/abhisek/examcoach/internal/session"
	"github.com/abhisek/examcoach/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the question and feedback server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EXAMCOACH_ADDR env var)")
}

func runServer(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.File != "" {
		if err := logging.EnableFileLogging(cfg.Log.File, level); err != nil {
			return fmt.Errorf("enable logging: %w", err)
		}
		defer logging.Close()
	} else {
		logging.Configure(level, os.Stderr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	llmCfg := llm.Resolve()
	if err := llmCfg.Validate(); err != nil {
		return fmt.Errorf("LLM provider not configured: %w (set EXAMCOACH_LLM_PROVIDER=mock to run without one)", err)
	}
	flash, pro, err := llm.NewTieredProviders(ctx, llmCfg, st.EventRepo())
	if err != nil {
		return err
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer closeSessions()

	server := api.NewServer(api.Options{
		Questions:   st.QuestionRepo(),
		Sessions:    session.NewManager(sessions, cfg.Server.SessionTTL),
		Marker:      marking.New(flash, pro, llmCfg.Timeout),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			"addr", cfg.Server.Addr,
			"db", dbPath,
			"llm_provider", llmCfg.Provider,
			"session_store", cfg.Server.SessionStore,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func openSessionStore(ctx context.Context, cfg config.ServerConfig) (session.Store, func(), error) {
	if cfg.SessionStore == "redis" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	}
	return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
}
