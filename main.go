package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/stat-grid/cliparse"
	"github.com/danielhkuo/stat-grid/metrics"
	"github.com/danielhkuo/stat-grid/middleware"
	"github.com/danielhkuo/stat-grid/router"
	"github.com/danielhkuo/stat-grid/session"
	"github.com/danielhkuo/stat-grid/statsapi"
	"github.com/danielhkuo/stat-grid/views"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if cfg.SessionSecret == "" {
		cfg.SessionSecret, err = session.GenerateSecret()
		if err != nil {
			slog.Error("session secret generation failed", "error", err)
			os.Exit(1)
		}
		slog.Warn("SESSION_SECRET not set; sessions will not survive a restart")
	}

	// Stats service client
	client, err := statsapi.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout})
	if err != nil {
		slog.Error("invalid stats service URL", "error", err)
		os.Exit(1)
	}

	tmpl, err := views.Load()
	if err != nil {
		slog.Error("template loading failed", "error", err)
		os.Exit(1)
	}

	// Metrics
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	logger := slog.Default()
	sessions := session.NewRegistry(session.NewFactory(client, cfg, recorder, logger), cfg.SessionLimit, recorder, logger)

	// Create router
	mux := router.NewRouter(sessions, tmpl, cfg, metrics.HTTPHandler(reg))

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "api", cfg.APIBaseURL, "edit_mode", cfg.EditMode)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		<-drained
		slog.Info("Server closed", "error", err)
	}

	// Deliver patches still pending in open sessions
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sessions.Close(ctx); err != nil {
		slog.Warn("sessions did not close cleanly", "error", err)
	}
}
