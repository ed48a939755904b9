package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fieldnorm/internal/normalizer/handler"
	"fieldnorm/pkg/config"
	"fieldnorm/pkg/contracts"
	apperrors "fieldnorm/pkg/errors"
	httputil "fieldnorm/pkg/http"
	"fieldnorm/pkg/metrics"
	"fieldnorm/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Worker runs until ctx is cancelled.
type Worker func(ctx context.Context) error

type backgroundWorker struct {
	name   string
	run    Worker
	closer io.Closer
}

type Application struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler

	workers       []backgroundWorker
	closers       []io.Closer
	workerErrors  chan error
	cancelWorkers context.CancelFunc
	workersWG     sync.WaitGroup
}

func NewApplication(cfg *config.Config, m *metrics.Metrics) *Application {
	return &Application{
		cfg:          cfg,
		metrics:      m,
		workerErrors: make(chan error, 1),
	}
}

// SetApp builds the HTTP server. readiness backs the /ready check.
func (a *Application) SetApp(appHandler contracts.Handler, readiness handler.Pinger) {
	a.setHealthHandler(readiness)
	a.setAppHandler(appHandler)
	a.setAppServer()
}

// AddWorker registers a background task started by Run. closer, when not
// nil, is closed during shutdown after the task's context is cancelled.
func (a *Application) AddWorker(name string, run Worker, closer io.Closer) {
	a.workers = append(a.workers, backgroundWorker{name: name, run: run, closer: closer})
}

// AddCloser registers a resource closed at the end of shutdown.
func (a *Application) AddCloser(closer io.Closer) {
	a.closers = append(a.closers, closer)
}

// Handler returns the root handler served by Run.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(readiness handler.Pinger) {
	healthRouter := httprouter.New()
	healthHandler := handler.NewHealthHandler(readiness, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

// Middleware order: Recovery → Logging → Metrics → MaxSize → ContentType → Signature → RateLimit → Timeout → Idempotency → Router
func (a *Application) setAppHandler(appHandler contracts.Handler) {
	cfg := a.cfg
	appRouter := httprouter.New()
	appRouter.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, apperrors.NotFound("Route"))
	})
	appHandler.RegisterRoutes(appRouter)

	a.idempotencyStore = a.newIdempotencyStore()
	clientKey := middleware.ClientIPExtractor
	if cfg.TrustProxyHeaders {
		clientKey = middleware.ForwardedClientIPExtractor
		cfg.Log.Info("Rate limiting keyed on X-Forwarded-For")
	}
	a.rateLimiter = middleware.NewClientRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		clientKey,
		cfg.Log,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyKeyHeader)(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.RateLimit(a.rateLimiter)(appHttpHandler)
	if cfg.IngestSigningSecret != "" {
		appHttpHandler = middleware.SignatureVerification(cfg.IngestSigningSecret, cfg.Log)(appHttpHandler)
		cfg.Log.Info("Request signature verification enabled")
	}
	appHttpHandler = middleware.ContentTypeValidation(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHttpHandler)
	if a.metrics != nil {
		appHttpHandler = middleware.Metrics(a.metrics, middleware.RouterRoutes(appRouter))(appHttpHandler)
	}
	appHttpHandler = middleware.RequestLogging(cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

// newIdempotencyStore shares replays through Redis when a client is
// connected, otherwise keeps them in process memory.
func (a *Application) newIdempotencyStore() middleware.IdempotencyStore {
	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		a.cfg.Log.Info("Idempotency store backed by Redis")
		return middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
	}
	return middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	if a.cfg.MetricsEnabled && a.metrics != nil {
		mux.Handle("/metrics", a.metrics.Handler())
		a.cfg.Log.Info("Metrics endpoint enabled", "path", "/metrics")
	}
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelWorkers = cancel

	for _, w := range a.workers {
		a.workersWG.Add(1)
		go func(w backgroundWorker) {
			defer a.workersWG.Done()
			a.cfg.Log.Info("Starting background worker", "worker", w.name)

			err := w.run(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				a.cfg.Log.Info("Background worker stopped", "worker", w.name)
				return
			}
			a.cfg.Log.Error("Background worker failed", "worker", w.name, "error", err)
			select {
			case a.workerErrors <- err:
			default:
			}
		}(w)
	}
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	a.startWorkers()

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case err := <-a.workerErrors:
		a.gracefulShutdown()
		a.cfg.Log.Fatal("Shutting down after background worker failure", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}
	a.cfg.Log.Info("Server stopped gracefully")

	a.cfg.Log.Info("Stopping background workers...")
	a.stopWorkers(ctx)
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.cfg.Log.Error("Failed to close resource", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
}

func (a *Application) stopWorkers(ctx context.Context) {
	if a.cancelWorkers != nil {
		a.cancelWorkers()
	}

	for _, w := range a.workers {
		if w.closer == nil {
			continue
		}
		if err := w.closer.Close(); err != nil {
			a.cfg.Log.Error("Failed to close background worker", "worker", w.name, "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		a.workersWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.cfg.Log.Warn("Timed out waiting for background workers")
	}
}
