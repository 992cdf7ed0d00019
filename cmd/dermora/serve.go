package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/dermora-assistant/internal/delivery/api"
	"github.com/yourusername/dermora-assistant/internal/delivery/telegram"
	"github.com/yourusername/dermora-assistant/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and the session janitor",
	Long: `Starts the HTTP API (with the websocket chat endpoint). When
TELEGRAM_BOT_TOKEN is set the Telegram bot runs as well. Idle sessions are
discarded after SESSION_IDLE_TTL.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := api.NewRouter(a.chat, a.quiz, a.routine, a.leaderboard, a.metrics.Handler(), logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		return runServer(ctx, srv)
	})

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBotHandler(cfg.TelegramToken, a.chat, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN is not set; telegram bot disabled")
	}

	g.Go(func() error {
		runJanitor(ctx, a.chat, cfg.SessionIdleTTL)
		return nil
	})

	return g.Wait()
}

// runServer serves until ctx is done, then shuts down gracefully
func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// runJanitor expires idle sessions until ctx is done
func runJanitor(ctx context.Context, chat usecase.ChatUseCase, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := chat.ExpireIdle(ctx, ttl); err != nil && ctx.Err() == nil {
				logger.Warn("failed to expire idle sessions", zap.Error(err))
			}
		}
	}
}
