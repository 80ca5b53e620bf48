package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/silk/internal/config"
	"github.com/vango-dev/silk/internal/demo"
	"github.com/vango-dev/silk/pkg/dom"
	"github.com/vango-dev/silk/pkg/middleware"
	"github.com/vango-dev/silk/pkg/render"
	"github.com/vango-dev/silk/pkg/tree/remote"
)

// DefaultTick is how often the demo of each session changes.
const DefaultTick = 500 * time.Millisecond

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
		tick time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream the demo tree to websocket clients",
		Long: `Serve the demo counter list over websockets.

Every connection gets its own session, runtime and demo tree. The tree
changes on a timer and each paint is sent to the client as a patch frame.

Endpoints:
  /ws        session websocket
  /healthz   liveness
  /metrics   Prometheus metrics (if enabled)

Examples:
  silk serve
  silk serve --port=8080 --tick=100ms
  silk watch ws://localhost:3000/ws`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger, tick)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from silk.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from silk.json)")
	cmd.Flags().DurationVar(&tick, "tick", DefaultTick, "How often each demo tree changes")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, tick time.Duration) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := newServer(ctx, cfg, logger, reg, tick)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("Listening on http://%s", cfg.Addr())
	info("Sessions: ws://%s/ws", cfg.Addr())
	if cfg.Metrics.Enabled {
		info("Metrics:  http://%s%s", cfg.Addr(), cfg.Metrics.Path)
	}
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "sessions", srv.active())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Serve.ShutdownTimeout.Std())
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		// Hijacked websocket connections are not tracked by Shutdown.
		srv.wait(shutdownCtx)
		return err
	})
	return g.Wait()
}

// server hands every websocket connection a session running the demo.
type server struct {
	ctx      context.Context
	cfg      *config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	tick     time.Duration

	sessionMetrics *remote.Metrics
	renderMetrics  *render.Metrics
	httpMetrics    func(http.Handler) http.Handler

	// slots bounds concurrent sessions; nil means no limit.
	slots chan struct{}

	mu       sync.Mutex
	sessions map[string]*remote.Session
	// closing is set by wait; new sessions are refused from then on.
	closing bool
	wg      sync.WaitGroup
}

// newServer builds a server whose sessions stop when ctx is done. Metrics
// are registered on reg when enabled.
func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer, tick time.Duration) *server {
	s := &server{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		tick:     tick,
		sessions: make(map[string]*remote.Session),
	}
	if cfg.Serve.MaxSessions > 0 {
		s.slots = make(chan struct{}, cfg.Serve.MaxSessions)
	}
	if cfg.Metrics.Enabled {
		s.sessionMetrics = remote.NewMetrics(remote.MetricsConfig{Namespace: cfg.Metrics.Namespace, Registry: reg})
		s.renderMetrics = render.NewMetrics(render.MetricsConfig{Namespace: cfg.Metrics.Namespace, Registry: reg})
		s.httpMetrics = middleware.Prometheus(
			middleware.WithRegistry(reg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
	}
	return s
}

func (s *server) routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OpenTelemetry(middleware.WithFilter(func(r *http.Request) bool {
		return r.URL.Path == "/ws"
	})))
	if s.httpMetrics != nil {
		r.Use(s.httpMetrics)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "ok %d\n", s.active())
	})
	r.Get("/ws", s.handleSession)
	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *server) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// wait refuses new sessions and blocks until every session has stopped
// or ctx is done.
func (s *server) wait(ctx context.Context) {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions still running after shutdown timeout", "sessions", s.active())
	}
}

// begin counts a new session in wg unless shutdown has started.
func (s *server) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	if s.slots != nil {
		select {
		case s.slots <- struct{}{}:
			defer func() { <-s.slots }()
		default:
			http.Error(w, "too many sessions", http.StatusServiceUnavailable)
			return
		}
	}

	if !s.begin() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}

	opts := []remote.SessionOption{
		remote.WithLogger(s.logger),
		remote.WithPaintInterval(s.cfg.Serve.PaintInterval.Std()),
		remote.WithWriteTimeout(s.cfg.Serve.WriteTimeout.Std()),
		remote.WithQueueSize(s.cfg.Serve.QueueSize),
	}
	if s.sessionMetrics != nil {
		opts = append(opts, remote.WithMetrics(s.sessionMetrics))
	}
	backend := remote.NewBackend()
	sess, err := remote.Accept(conn, backend, opts...)
	if err != nil {
		s.logger.Info("handshake failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.ID())
		s.mu.Unlock()
	}()

	s.serve(sess, backend)
}

// serve runs the demo on sess until the session stops. The app is only
// touched by session tasks, and by this goroutine once Run has returned.
func (s *server) serve(sess *remote.Session, backend *remote.Backend) {
	logger := s.logger.With("session", sess.ID())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var app *demo.App
	err := sess.Submit(func() {
		schedOpts := []render.Option{
			render.WithLogger(logger),
			render.WithTracer(otel.Tracer(render.TracerName)),
		}
		if s.renderMetrics != nil {
			schedOpts = append(schedOpts, render.WithMetrics(s.renderMetrics))
		}
		app = demo.New(dom.NewRuntime(backend, render.New(backend, schedOpts...)), logger)
		app.Render()
	})
	if err != nil {
		logger.Error("session setup failed", "error", err)
		sess.Close()
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.drive(ctx, sess, func() { app.Tick(rng) })
	}()

	if err := sess.Run(ctx); err != nil {
		logger.Info("session ended", "error", err)
	}
	cancel()
	wg.Wait()

	if app != nil {
		app.Release()
	}
}

// drive submits fn to sess on every tick. A full queue skips the tick.
func (s *server) drive(ctx context.Context, sess *remote.Session, fn func()) {
	if s.tick <= 0 {
		return
	}
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			switch err := sess.Submit(fn); {
			case errors.Is(err, remote.ErrSessionClosed):
				return
			case errors.Is(err, remote.ErrQueueFull):
				s.logger.Debug("tick skipped", "session", sess.ID())
			}
		}
	}
}
