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

	"github.com/hyperjump/docstudio/internal/models"
	"github.com/hyperjump/docstudio/internal/server"
	"github.com/hyperjump/docstudio/internal/storage"
	"github.com/hyperjump/docstudio/internal/watcher"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host    string
		port    int
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the inbox watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			logger := opts.logger

			c, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			deps := c.ServerDeps()
			watchCtx, watchCancel := context.WithCancel(context.Background())
			defer watchCancel()
			if !noWatch && len(cfg.Watch.Directories) > 0 {
				w, err := startInbox(watchCtx, c, logger)
				if err != nil {
					return err
				}
				defer w.Stop()
				deps.Watch = w
			}

			go c.Sessions.RunSweeper(watchCtx, cfg.Server.SessionIdleTimeout, 0, func(n int) {
				logger.Debug("idle sessions removed", zap.Int("count", n))
			})

			srv := server.NewServer(deps, &cfg.Server, logger)
			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sigChan:
			case err := <-errCh:
				logger.Error("Server failed", zap.Error(err))
				return err
			}

			logger.Info("Shutting down...")
			watchCancel()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch inbox directories")
	return cmd
}

// startInbox watches the configured directories and summarizes every new or changed file.
func startInbox(ctx context.Context, c *Components, logger *zap.Logger) (*watcher.Watcher, error) {
	wc := c.Config.Watch
	band, err := models.ParseSummaryLength(wc.SummaryLength)
	if err != nil {
		return nil, err
	}
	backend := c.Backend
	if wc.Backend != "" {
		if backend, err = storage.ParseBackend(wc.Backend); err != nil {
			return nil, err
		}
	}
	inbox := watcher.NewInbox(c.Extractor, c.Summarizer, c.Store, watcher.InboxConfig{
		Backend:  backend,
		Band:     band,
		MaxBytes: c.Config.Extract.MaxFileSizeBytes(),
	}, logger)
	w := watcher.NewWatcher(wc.Directories, wc.Extensions, wc.RecursiveOrDefault(), inbox.Handler(ctx),
		watcher.WithLogger(logger), watcher.WithDebounce(wc.Debounce))
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	go w.SyncExisting()
	logger.Info("inbox watcher started", zap.Strings("directories", w.Directories()), zap.String("backend", string(backend)))
	return w, nil
}
