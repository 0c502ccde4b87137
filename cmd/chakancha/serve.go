package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chakancha/internal/api"
	"chakancha/internal/rag"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chatbot HTTP API",
	Long: `Starts the HTTP API serving the chat, feedback, health and conversation
endpoints. With store.watch_faq_file enabled, edits to the FAQ file are
re-ingested live.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	chat, err := buildAgent(s)
	if err != nil {
		return err
	}

	router := api.NewRouter(chat, s, logger, api.RouterOptions{
		RatePerMinute: cfg.Server.RatePerMinute,
		Version:       cfg.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Store.WatchFAQFile {
		engine, err := buildEmbeddingEngine()
		if err != nil {
			return err
		}
		ingestor := rag.NewIngestor(s, engine)
		watcher := rag.NewWatcher(ingestor, cfg.Store.FAQFile, rag.IngestOptions{
			Namespace:  cfg.Store.Namespace,
			BatchSize:  cfg.Embedding.BatchSize,
			ClearFirst: true,
		})
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
