// main is the entry point of the readmission prediction frontend.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Compile the risk tiers and build the prediction pipeline
//  4. Register all HTTP routes
//  5. Start the HTTP server and the session sweeper
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/readmission-client --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/readmission-client
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/readmission-client/internal/config"
	"github.com/aanand-mishra/readmission-client/internal/controller"
	"github.com/aanand-mishra/readmission-client/internal/form"
	"github.com/aanand-mishra/readmission-client/internal/http/handlers/prediction"
	"github.com/aanand-mishra/readmission-client/internal/logger"
	"github.com/aanand-mishra/readmission-client/internal/predictor"
	"github.com/aanand-mishra/readmission-client/internal/render"
	"github.com/aanand-mishra/readmission-client/internal/storage/memory"
	"github.com/aanand-mishra/readmission-client/internal/validation"
)

// Session sweeping and shutdown timings.
const (
	sessionIdle  = 2 * time.Hour
	sweepEvery   = 10 * time.Minute
	shutdownWait = 5 * time.Second
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through the package-level slog functions, so the
	// configured logger also becomes the default.
	log := logger.Setup(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	log.Info("starting readmission-client",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Predictor.BaseURL),
		slog.Duration("timeout", cfg.Predictor.Timeout),
	)

	// ── 3. Build the Pipeline ─────────────────────────────────────────────
	// A bad tier expression is a configuration error: refuse to start.
	tiers, err := render.NewTierTable(cfg.Tiers())
	if err != nil {
		log.Error("invalid risk tiers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := predictor.New(cfg.Predictor.BaseURL,
		predictor.WithHTTPClient(&http.Client{Timeout: cfg.Predictor.Timeout}),
		predictor.WithLogger(log),
	)
	collector := form.NewCollector()
	validator := validation.New()
	renderer := render.NewRenderer(tiers)

	// Every session gets its own Controller bound to its own panel. The
	// stages themselves are stateless and shared.
	store := memory.New(func(target render.Target) *controller.Controller {
		return controller.New(collector, validator, client, renderer, target, log)
	})

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	prediction.Register(router, store)

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: POST /submit waits on the backend, which is
		// bounded by predictor.timeout (if set), not by the server.
	}

	// ── 5. Start Server and Sweeper ───────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweep(sweepCtx, store, log)

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")
	stopSweep()

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// sweep prunes idle sessions until ctx is done.
func sweep(ctx context.Context, store *memory.Memory, log *slog.Logger) {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Prune(now.Add(-sessionIdle)); n > 0 {
				log.Debug("pruned idle sessions",
					slog.Int("pruned", n),
					slog.Int("live", store.Len()),
				)
			}
		}
	}
}
