package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/api"
	"github.com/gcbaptista/go-artifact-index/internal/engine"
	"github.com/gcbaptista/go-artifact-index/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	if problems := settings.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid settings:\n  %s", strings.Join(problems, "\n  "))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	logger.Info("Starting artifact index", zap.String("data_dir", settings.DataDir), zap.Int("registries", len(settings.Registries)))
	eng := engine.NewEngine(ctx, settings, logger, m)
	defer eng.Close()

	if !settings.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(eng, logger, api.Options{
		MaxRequestBytes: settings.MaxRequestBytes,
		Gatherer:        registry,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
