package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/payment-frontend/internal/app"
	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/middleware"
	"github.com/vango-dev/payment-frontend/pkg/page"
)

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// session is one rendered page and, once attached, its live connection.
type session struct {
	id      string
	created time.Time
	logger  *slog.Logger

	app  *app.Context
	root *page.Root

	ctx    context.Context
	cancel context.CancelFunc
	events chan middleware.Event

	writeMu  sync.Mutex
	conn     *websocket.Conn
	attached bool

	onRender func()
}

func newSession(logger *slog.Logger) *session {
	ctx, cancel := context.WithCancel(context.Background())
	id := generateSessionID()
	return &session{
		id:      id,
		created: time.Now(),
		logger:  logger.With("session", id),
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan middleware.Event, 16),
	}
}

// push sends a render frame if the session is attached. It is the root's
// update callback.
func (s *session) push(html string) {
	if err := s.write(renderFrame(html)); err != nil {
		s.logger.Debug("render not sent", "error", err)
		return
	}
	if s.onRender != nil {
		s.onRender()
	}
}

func (s *session) write(f serverFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return errors.New("E030").WithDetail("session not attached")
	}
	return s.conn.WriteJSON(f)
}

func (s *session) setConn(conn *websocket.Conn) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn = conn
}

// loop processes events one at a time until the events channel closes.
func (s *session) loop(handle middleware.Handler) {
	for ev := range s.events {
		if err := handle(s.ctx, ev); err != nil {
			if werr := s.write(errorFrame(err)); werr != nil {
				s.logger.Debug("error frame not sent", "error", werr)
			}
		}
	}
}

// close releases the session's page and connection.
func (s *session) close() {
	s.cancel()
	if s.root != nil {
		s.root.Close()
	}
	if s.app != nil {
		s.app.Close()
	}
	s.writeMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.writeMu.Unlock()
}

// sessionManager tracks page sessions and expires unattached ones.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *middleware.Metrics
}

func newSessionManager(ttl time.Duration, logger *slog.Logger, metrics *middleware.Metrics) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		logger:   logger,
		metrics:  metrics,
	}
}

func (m *sessionManager) add(s *session) {
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.metrics.RecordSessionCreate()
}

func (m *sessionManager) get(id string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// attach marks a pending session as live. A session attaches once.
func (m *sessionManager) attach(id string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("E030").WithDetailf("session %q", id)
	}
	if s.attached {
		return nil, errors.New("E030").WithDetailf("session %q is already attached", id)
	}
	s.attached = true
	m.metrics.RecordSessionAttach()
	return s, nil
}

// remove closes and forgets an attached session.
func (m *sessionManager) remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.close()
	if s.attached {
		m.metrics.RecordSessionClose()
	} else {
		m.metrics.RecordSessionExpire()
	}
}

// sweep drops sessions that were rendered before now-ttl and never attached.
func (m *sessionManager) sweep(now time.Time) int {
	var expired []*session
	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.attached && now.Sub(s.created) > m.ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		m.metrics.RecordSessionExpire()
		s.logger.Debug("session expired")
	}
	return len(expired)
}

// run sweeps periodically until ctx is done.
func (m *sessionManager) run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.sweep(now); n > 0 {
				m.logger.Info("expired sessions", "count", n)
			}
		}
	}
}

func (m *sessionManager) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// shutdown closes every session.
func (m *sessionManager) shutdown() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.remove(id)
	}
}
