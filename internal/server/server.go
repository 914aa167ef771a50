package server

import (
	"context"
	_ "embed"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/payment-frontend/internal/app"
	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/middleware"
	"github.com/vango-dev/payment-frontend/pkg/page"
	"github.com/vango-dev/payment-frontend/pkg/store"
)

//go:embed client.js
var clientJS []byte

// Config configures a Server.
type Config struct {
	// Addr is the listen address for ListenAndServe.
	Addr string

	// SessionTTL is how long a rendered page may wait for its WebSocket.
	SessionTTL time.Duration

	// Dev accepts WebSocket upgrades from any origin.
	Dev bool

	// ShowConnect renders the connect button on the page.
	ShowConnect bool

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics uses m for instrumentation and serves gatherer at /metrics.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithEventMiddleware appends middleware around event dispatch.
func WithEventMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) { s.eventMiddleware = append(s.eventMiddleware, mws...) }
}

// Server serves pages and their live event channels.
type Server struct {
	config   Config
	template *page.Template
	builder  store.Builder

	logger          *slog.Logger
	metrics         *middleware.Metrics
	gatherer        prometheus.Gatherer
	eventMiddleware []middleware.Middleware

	sessions *sessionManager
	upgrader websocket.Upgrader
	handle   middleware.Handler
	router   chi.Router
}

// New creates a server that mounts the app into pages built from tmpl.
// builder creates each session's actor on its first Connect.
func New(config Config, tmpl *page.Template, builder store.Builder, opts ...Option) *Server {
	if config.SessionTTL <= 0 {
		config.SessionTTL = 2 * time.Minute
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		config:   config,
		template: tmpl,
		builder:  builder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = middleware.NewMetrics(middleware.WithRegistry(reg))
		s.gatherer = reg
	}
	s.logger = s.logger.With("component", "server")

	s.sessions = newSessionManager(config.SessionTTL, s.logger, s.metrics)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if config.Dev {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	mws := []middleware.Middleware{
		middleware.Recover(s.logger),
		middleware.OpenTelemetry(),
		s.metrics.Middleware(),
		middleware.Logging(s.logger),
	}
	s.handle = middleware.Chain(s.dispatch, append(mws, s.eventMiddleware...)...)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.servePage)
	r.Get("/_live", s.serveLive)
	r.Get("/_client.js", s.serveClient)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// requestLogger logs each request with slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// dispatch routes an event to its session's root.
func (s *Server) dispatch(ctx context.Context, ev middleware.Event) error {
	sess, ok := s.sessions.get(ev.Session)
	if !ok {
		return errors.New("E030").WithDetailf("session %q", ev.Session)
	}
	return sess.root.Dispatch(ctx, ev.HID, ev.Name)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	sess := newSession(s.logger)
	sess.onRender = s.metrics.RecordRender
	sess.app = app.New(s.builder,
		app.WithLogger(sess.logger),
		app.WithObserver(s.metrics),
		app.WithShowConnect(s.config.ShowConnect),
	)

	doc := s.template.New()
	root, err := app.Mount(doc, sess.app, page.WithOnUpdate(sess.push))
	if err != nil {
		sess.close()
		s.logger.Error("mount failed", "template", s.template.Name(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sess.root = root

	if body, ok := doc.Body(); ok {
		body.SetAttr("data-session", sess.id)
		if err := body.AppendHTML(`<script src="/_client.js" defer></script>`); err != nil {
			s.logger.Warn("client script not injected", "error", err)
		}
	}

	s.sessions.add(sess)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := doc.Render(w); err != nil {
		s.logger.Warn("page write failed", "session", sess.id, "error", err)
	}
}

func (s *Server) serveLive(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, err := s.sessions.attach(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.RecordWebSocketError("upgrade")
		s.logger.Warn("upgrade failed", "session", id, "error", err)
		s.sessions.remove(id)
		return
	}
	sess.setConn(conn)
	sess.logger.Debug("session attached")

	go sess.loop(s.handle)
	defer s.sessions.remove(id)
	defer close(sess.events)

	// Resync in case the page changed between render and attach.
	sess.push(sess.root.HTML())
	s.readLoop(sess, conn)
}

// readLoop decodes client frames and queues their events until the
// connection closes.
func (s *Server) readLoop(sess *session, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.metrics.RecordWebSocketError("read")
				sess.logger.Warn("read error", "error", err)
			}
			return
		}

		f, err := decodeClientFrame(msg)
		if err != nil {
			s.metrics.RecordWebSocketError("frame")
			sess.write(errorFrame(err))
			continue
		}

		select {
		case sess.events <- middleware.Event{Session: sess.id, HID: f.HID, Name: f.Event}:
		case <-sess.ctx.Done():
			return
		}
	}
}

func (s *Server) serveClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if s.config.Dev {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}
	w.Write(clientJS)
}

// Sessions returns the number of tracked page sessions.
func (s *Server) Sessions() int {
	return s.sessions.len()
}

// ListenAndServe serves on config.Addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.sessions.shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Close drops every session.
func (s *Server) Close() {
	s.sessions.shutdown()
}
